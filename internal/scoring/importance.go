package scoring

import (
	"math"
	"strings"
	"time"
)

// stabilityHorizon caps the age contribution of the stability sub-score.
const stabilityHorizon = 30 * 24 * time.Hour

// Lexical indicator sets for the importance sub-scores. Matching is
// case-insensitive on whole words.
var (
	genericIndicators = []string{
		"how", "what", "process", "method", "system", "general", "common",
		"typical", "standard", "usually", "always", "procedure", "steps",
		"guide", "way", "approach", "pattern", "rule", "principle",
	}

	personalIndicators = []string{
		"my", "me", "mine", "personal", "private", "own", "myself",
		"favorite", "prefer", "feel", "felt", "remember",
	}

	domainVocabulary = []string{
		"workflow", "configuration", "deployment", "pipeline", "protocol",
		"algorithm", "architecture", "integration", "automation", "schema",
	}

	actionableIndicators = []string{
		"should", "must", "need", "use", "run", "create", "configure",
		"install", "set", "enable", "avoid", "check", "ensure", "update",
	}

	informationalIndicators = []string{
		"is", "are", "means", "because", "contains", "includes", "defines",
		"requires", "supports", "provides", "consists",
	}

	technicalTerms = []string{
		"api", "database", "server", "client", "function", "query",
		"index", "cache", "queue", "thread", "vector", "embedding",
		"token", "model", "endpoint", "cluster",
	}
)

// ImportanceBreakdown exposes the four sub-scores behind an importance
// evaluation so callers can log why an entry was or was not promoted.
type ImportanceBreakdown struct {
	CrossAgent float64 `json:"cross_agent"`
	Utility    float64 `json:"utility"`
	Stability  float64 `json:"stability"`
	Complexity float64 `json:"complexity"`
	Total      float64 `json:"total"`
}

// Importance scores how valuable a knowledge entry is to the shared
// cross-agent pool. Four sub-scores in [0,1] weighted 0.3/0.3/0.2/0.2,
// total rounded to 4 decimal places.
func Importance(content string, createdAt time.Time, keywordCount int) ImportanceBreakdown {
	return ImportanceAt(content, createdAt, keywordCount, time.Now())
}

// ImportanceAt is Importance with an explicit evaluation time.
func ImportanceAt(content string, createdAt time.Time, keywordCount int, now time.Time) ImportanceBreakdown {
	words := strings.Fields(strings.ToLower(content))

	b := ImportanceBreakdown{
		CrossAgent: crossAgentScore(words),
		Utility:    utilityScore(words),
		Stability:  stabilityScore(createdAt, keywordCount, now),
		Complexity: complexityScore(content, words),
	}
	b.Total = round4(0.3*b.CrossAgent + 0.3*b.Utility + 0.2*b.Stability + 0.2*b.Complexity)
	return b
}

// crossAgentScore measures how generic (vs personal) the language is:
// generic / (generic + personal), boosted for domain vocabulary.
func crossAgentScore(words []string) float64 {
	generic := countMatches(words, genericIndicators)
	personal := countMatches(words, personalIndicators)

	score := 0.5
	if generic+personal > 0 {
		score = float64(generic) / float64(generic+personal)
	}

	if countMatches(words, domainVocabulary) > 0 {
		score += 0.2
	}

	return clamp01(score)
}

// utilityScore weights actionable over informational language plus a
// length factor, capped at 1.0.
func utilityScore(words []string) float64 {
	actionable := countMatches(words, actionableIndicators)
	informational := countMatches(words, informationalIndicators)

	score := 0.15*float64(actionable) + 0.05*float64(informational)
	score += math.Min(float64(len(words))/100.0, 0.3)

	return clamp01(score)
}

// stabilityScore rewards entries that have survived: age since creation
// capped at a 30-day horizon, plus a small boost per associated keyword.
func stabilityScore(createdAt time.Time, keywordCount int, now time.Time) float64 {
	age := now.Sub(createdAt)
	if age < 0 {
		age = 0
	}

	score := math.Min(age.Seconds()/stabilityHorizon.Seconds(), 0.8)
	score += 0.05 * float64(keywordCount)

	return clamp01(score)
}

// complexityScore combines word count, technical-term density, and
// average sentence length, capped at 1.0.
func complexityScore(content string, words []string) float64 {
	if len(words) == 0 {
		return 0.0
	}

	wordFactor := math.Min(float64(len(words))/50.0, 0.4)

	density := float64(countMatches(words, technicalTerms)) / float64(len(words))
	densityFactor := math.Min(density*5.0, 0.3)

	sentences := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentenceCount := 0
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			sentenceCount++
		}
	}
	if sentenceCount == 0 {
		sentenceCount = 1
	}
	avgSentenceLen := float64(len(words)) / float64(sentenceCount)
	sentenceFactor := math.Min(avgSentenceLen/25.0, 0.3)

	return clamp01(wordFactor + densityFactor + sentenceFactor)
}

func countMatches(words []string, indicators []string) int {
	set := make(map[string]struct{}, len(indicators))
	for _, ind := range indicators {
		set[ind] = struct{}{}
	}

	count := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		if _, ok := set[w]; ok {
			count++
		}
	}
	return count
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
