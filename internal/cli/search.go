package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search memories across all four tiers",
	Long: `Read-only retrieval: classify the query, read all four memory tiers
concurrently, and print the synthesized, ranked context. Nothing is
stored and no response is generated.

Examples:
  memtier search "kubernetes deployment"
  memtier -a support-bot search what does the user prefer
  memtier search --json "project deadlines"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")

	facade, manager, err := buildAgent(ctx)
	if err != nil {
		return err
	}
	defer manager.Stop()

	synth, err := facade.SearchMemories(ctx, agentID, text)
	if err != nil {
		return fmt.Errorf("search memories: %w", err)
	}

	if searchJSON {
		return printJSON(synth)
	}

	if len(synth.Memories) == 0 {
		fmt.Println("No memories found.")
		return nil
	}

	fmt.Printf("Intent: %s   Confidence: %s (%.2f)\n\n", synth.Intent, synth.Level, synth.Confidence)
	for _, m := range synth.Memories {
		fmt.Printf("  [tier %d] %.3f  %s\n", m.Tier, m.Score, m.Content)
	}
	return nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the synthesized context as JSON")
}
