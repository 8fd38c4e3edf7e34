package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/norbu09/memtier/internal/models"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recent maintenance jobs",
	Long: `List persisted maintenance job records, newest first. Shows job type,
agent, status, attempt count, and timing.

Examples:
  memtier jobs
  memtier jobs --limit 50`,
	Args: cobra.NoArgs,
	RunE: runJobs,
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	records, err := dbClient.ListMaintenanceJobs(ctx, jobsLimit)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No maintenance jobs recorded.")
		return nil
	}

	fmt.Printf("%-10s %-22s %-14s %-10s %-8s %s\n", "ID", "TYPE", "AGENT", "STATUS", "ATTEMPTS", "STARTED")
	for _, job := range records {
		id, err := models.RecordIDString(job.ID)
		if err != nil {
			id = fmt.Sprintf("%v", job.ID.ID)
		}
		fmt.Printf("%-10s %-22s %-14s %-10s %-8d %s\n",
			id,
			job.JobType,
			job.AgentID,
			job.Status,
			job.Attempts,
			job.StartedAt.Format(time.RFC3339),
		)
		if job.Error != nil && verbose {
			fmt.Printf("           error: %s\n", *job.Error)
		}
	}
	return nil
}

func init() {
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 20, "maximum number of jobs to list")
}
