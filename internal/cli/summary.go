package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show per-tier memory counts and distribution",
	Long: `Aggregate the agent's memory across all four tiers: record counts,
the per-tier characteristic average (segment heat, knowledge
confidence, shared importance), and the percentage distribution.

Examples:
  memtier summary
  memtier -a support-bot summary --json`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	facade, manager, err := buildAgent(ctx)
	if err != nil {
		return err
	}
	defer manager.Stop()

	summary, err := facade.GetMemorySummary(ctx, agentID)
	if err != nil {
		return fmt.Errorf("memory summary: %w", err)
	}

	if summaryJSON {
		return printJSON(summary)
	}

	fmt.Printf("Memory summary for %s (%d total)\n\n", summary.AgentID, summary.Total)
	fmt.Printf("  %-12s %6s %10s %8s\n", "TIER", "COUNT", "AVG", "SHARE")
	fmt.Printf("  %-12s %6d %10s %7.1f%%\n", "recent", summary.Recent.Count, "-", summary.Recent.Percent)
	fmt.Printf("  %-12s %6d %10.3f %7.1f%%\n", "segments", summary.Segments.Count, summary.Segments.Average, summary.Segments.Percent)
	fmt.Printf("  %-12s %6d %10.3f %7.1f%%\n", "knowledge", summary.Knowledge.Count, summary.Knowledge.Average, summary.Knowledge.Percent)
	fmt.Printf("  %-12s %6d %10.3f %7.1f%%\n", "shared", summary.Shared.Count, summary.Shared.Average, summary.Shared.Percent)
	return nil
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output the summary as JSON")
}
