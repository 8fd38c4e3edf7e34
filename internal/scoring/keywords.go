package scoring

import "strings"

// stopwords excluded from keyword extraction. Kept deliberately small:
// the Jaccard comparison tolerates noise, it only needs common filler
// words removed so short queries still overlap with segment keywords.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "can": {}, "do": {}, "for": {}, "from": {},
	"has": {}, "have": {}, "how": {}, "i": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "was": {}, "we": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// Keywords extracts a deduplicated lowercase keyword set from text.
// Tokens are split on non-alphanumeric runes, stopwords and single
// characters are dropped, and first-occurrence order is preserved.
func Keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isAlphanumeric(r)
	})

	seen := make(map[string]struct{}, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		keywords = append(keywords, f)
	}

	return keywords
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// UnionKeywords merges two keyword sets, preserving order of first
// occurrence. Used for incremental segment keyword updates.
func UnionKeywords(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	union := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			union = append(union, s)
		}
	}
	return union
}
