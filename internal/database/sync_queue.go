package database

import (
	"context"
	"fmt"
	"time"

	"barberia/internal/models"
)

const syncColumns = `id, task_type, reservation_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at`

func (db *DB) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	query := `INSERT INTO sync_queue (task_type, reservation_id, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	ts := now()
	if task.Status == "" {
		task.Status = models.SyncStatusPending
	}
	err := db.QueryRowContext(ctx, query,
		task.TaskType,
		task.ReservationID,
		task.Payload,
		task.Status,
		task.RetryCount,
		task.LastError,
		ts,
		utcPtr(task.NextRetryAt),
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to create sync task: %w", err)
	}
	task.CreatedAt = ts
	return nil
}

func (db *DB) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	query := `SELECT ` + syncColumns + `
              FROM sync_queue
              WHERE status IN ($1, $2) AND (next_retry_at IS NULL OR next_retry_at <= $3)
              ORDER BY created_at ASC LIMIT $4`
	return db.querySyncTasks(ctx, query, models.SyncStatusPending, models.SyncStatusRetry, now(), limit)
}

func (db *DB) GetSyncTask(ctx context.Context, id int64) (*models.SyncTask, error) {
	tasks, err := db.querySyncTasks(ctx, `SELECT `+syncColumns+` FROM sync_queue WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("sync task %d not found", id)
	}
	return &tasks[0], nil
}

func (db *DB) UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []any
	ts := now()

	nextRetryAt = utcPtr(nextRetryAt)
	var lastError *string
	if errMsg != "" {
		lastError = &errMsg
	}

	switch status {
	case models.SyncStatusRetry:
		query = `UPDATE sync_queue SET status = $1, last_error = $2, next_retry_at = $3, retry_count = retry_count + 1 WHERE id = $4`
		args = []any{status, lastError, nextRetryAt, id}
	case models.SyncStatusCompleted, models.SyncStatusFailed:
		query = `UPDATE sync_queue SET status = $1, last_error = $2, next_retry_at = $3, processed_at = $4 WHERE id = $5`
		args = []any{status, lastError, nextRetryAt, ts, id}
	default:
		query = `UPDATE sync_queue SET status = $1, last_error = $2, next_retry_at = $3 WHERE id = $4`
		args = []any{status, lastError, nextRetryAt, id}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update sync task status: %w", err)
	}
	return nil
}

func (db *DB) GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error) {
	query := `SELECT ` + syncColumns + ` FROM sync_queue WHERE status = $1 ORDER BY created_at DESC`
	return db.querySyncTasks(ctx, query, models.SyncStatusFailed)
}

func (db *DB) querySyncTasks(ctx context.Context, query string, args ...any) ([]models.SyncTask, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.SyncTask
	for rows.Next() {
		var t models.SyncTask
		err := rows.Scan(
			&t.ID, &t.TaskType, &t.ReservationID, &t.Payload, &t.Status, &t.RetryCount, &t.LastError, &t.CreatedAt, &t.ProcessedAt, &t.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// utcPtr keeps stored timestamps comparable as text on sqlite.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC().Truncate(time.Microsecond)
	return &u
}
