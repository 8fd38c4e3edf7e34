package db

import (
	"context"
	"fmt"

	"github.com/norbu09/memtier/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateMaintenanceJob persists a new background job record.
func (c *Client) CreateMaintenanceJob(ctx context.Context, id, jobType, agentID string) error {
	sql := `
		CREATE type::record("maintenance_job", $id) SET
			job_type = $job_type,
			agent_id = $agent_id,
			status = "pending",
			attempts = 0
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":       id,
		"job_type": jobType,
		"agent_id": agentID,
	})
	if err != nil {
		return fmt.Errorf("create maintenance job: %w", wrapQueryError(err))
	}
	return nil
}

// UpdateJobStatus sets the job status and bumps the attempt counter when
// transitioning to running.
func (c *Client) UpdateJobStatus(ctx context.Context, id, status string) error {
	sql := `UPDATE type::record("maintenance_job", $id) SET status = $status`
	if status == "running" {
		sql = `UPDATE type::record("maintenance_job", $id) SET status = $status, attempts += 1`
	}

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":     id,
		"status": status,
	})
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// CompleteJob marks a job as completed with its result payload.
func (c *Client) CompleteJob(ctx context.Context, id string, result map[string]any) error {
	sql := `
		UPDATE type::record("maintenance_job", $id) SET
			status = "completed",
			result = $result,
			completed_at = time::now()
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":     id,
		"result": result,
	})
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// FailJob marks a job as failed with its final error.
func (c *Client) FailJob(ctx context.Context, id, errMsg string) error {
	sql := `
		UPDATE type::record("maintenance_job", $id) SET
			status = "failed",
			error = $error,
			completed_at = time::now()
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":    id,
		"error": errMsg,
	})
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// ListMaintenanceJobs returns recent job records, newest first.
func (c *Client) ListMaintenanceJobs(ctx context.Context, limit int) ([]models.MaintenanceJob, error) {
	sql := `
		SELECT * FROM maintenance_job
		ORDER BY started_at DESC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.MaintenanceJob](ctx, c.db, sql, map[string]any{
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list maintenance jobs: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.MaintenanceJob{}, nil
	}
	return (*results)[0].Result, nil
}
