package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var interactJSON bool

var interactCmd = &cobra.Command{
	Use:   "interact [message...]",
	Short: "Send a message through the full memory cycle",
	Long: `Process one interaction: retrieve memory context across all four
tiers, generate a response, store the turn, and schedule the tier
transfer in the background.

Examples:
  memtier interact "what did we talk about last time?"
  memtier -a support-bot interact remind me about my project deadline
  memtier interact --json "hello"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInteract,
}

func runInteract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")

	facade, manager, err := buildAgent(ctx)
	if err != nil {
		return err
	}
	defer manager.Stop()

	result, err := facade.ProcessInteraction(ctx, agentID, text)
	if err != nil {
		return fmt.Errorf("process interaction: %w", err)
	}

	if interactJSON {
		return printJSON(result)
	}

	fmt.Println(result.Response)
	if result.Metadata.Degraded {
		fmt.Println("\n(degraded: response generated from memory only)")
	}
	if result.Metadata.StorageError != "" {
		fmt.Printf("\nWarning: interaction not stored: %s\n", result.Metadata.StorageError)
	}
	if verbose {
		fmt.Printf("\nintent=%s confidence=%s elapsed=%dms\n",
			result.Context.Intent, result.Context.Level, result.Metadata.ElapsedMs)
		if result.Metadata.TransferJobID != "" {
			fmt.Printf("transfer job: %s\n", result.Metadata.TransferJobID)
		}
	}
	return nil
}

func init() {
	interactCmd.Flags().BoolVar(&interactJSON, "json", false, "output the full result as JSON")
}
