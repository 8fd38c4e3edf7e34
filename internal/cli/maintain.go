package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var maintainOps []string

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run memory maintenance for an agent",
	Long: `Schedule background maintenance operations and wait for the worker
pool to drain them. Without --op the default sweep runs: heat update,
capacity check, knowledge evaluation, and shared pool enforcement.

Examples:
  memtier maintain
  memtier -a support-bot maintain --op capacity_check
  memtier maintain --op heat_update --op knowledge_evaluation`,
	Args: cobra.NoArgs,
	RunE: runMaintain,
}

func runMaintain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	facade, manager, err := buildAgent(ctx)
	if err != nil {
		return err
	}

	reports, err := facade.TriggerMaintenance(ctx, agentID, maintainOps)
	if err != nil {
		manager.Stop()
		return fmt.Errorf("trigger maintenance: %w", err)
	}

	for _, r := range reports {
		if r.Scheduled {
			fmt.Printf("  scheduled %-22s job=%s\n", r.Operation, r.JobID)
		} else {
			fmt.Printf("  failed    %-22s %s\n", r.Operation, r.Error)
		}
	}

	// Stop drains the queue before returning, so scheduled jobs finish
	// before the process exits.
	fmt.Println("\nWaiting for jobs to complete...")
	manager.Stop()

	for _, r := range reports {
		if !r.Scheduled {
			continue
		}
		if job := manager.Get(r.JobID); job != nil {
			snap := job.Snapshot()
			fmt.Printf("  %-22s %s", r.Operation, snap.Status)
			if snap.Error != "" {
				fmt.Printf("  (%s)", snap.Error)
			}
			fmt.Println()
		}
	}
	return nil
}

func init() {
	maintainCmd.Flags().StringArrayVar(&maintainOps, "op", nil, "operation to schedule (repeatable); empty runs the default sweep")
}
