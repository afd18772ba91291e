package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
)

// CreateRun records the start of a pipeline run.
func (s *SQLiteStorage) CreateRun(ctx context.Context, run *model.Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if err := validateString(run.ID, "run.ID"); err != nil {
		return err
	}
	if err := validateRunStatus(run.Status); err != nil {
		return err
	}

	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)
	`, run.ID, string(run.Status), startedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun marks a run finished with its final status and counters.
func (s *SQLiteStorage) FinishRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(runID, "runID"); err != nil {
		return err
	}
	if err := validateRunStatus(status); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET
			status = ?, finished_at = ?, raw_rows = ?, invalid_rows = ?,
			duplicate_rows = ?, filings_saved = ?, clusters_detected = ?,
			whales_detected = ?
		WHERE id = ?
	`, string(status), time.Now(), stats.RawRows, stats.InvalidRows,
		stats.DuplicateRows, stats.FilingsSaved, stats.ClustersDetected,
		stats.WhalesDetected, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check run update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s: %w", runID, common.ErrNotFound)
	}
	return nil
}

// GetLatestRun returns the most recently started run regardless of status.
func (s *SQLiteStorage) GetLatestRun(ctx context.Context) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryRun(ctx, `
		SELECT id, status, started_at, finished_at, raw_rows, invalid_rows,
			duplicate_rows, filings_saved, clusters_detected, whales_detected
		FROM runs ORDER BY started_at DESC LIMIT 1
	`)
}

func (s *SQLiteStorage) latestRunWithStatus(ctx context.Context, status model.RunStatus) (*model.Run, error) {
	return s.queryRun(ctx, `
		SELECT id, status, started_at, finished_at, raw_rows, invalid_rows,
			duplicate_rows, filings_saved, clusters_detected, whales_detected
		FROM runs WHERE status = ? ORDER BY started_at DESC LIMIT 1
	`, string(status))
}

func (s *SQLiteStorage) queryRun(ctx context.Context, query string, args ...any) (*model.Run, error) {
	var run model.Run
	var status string
	var finishedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&run.ID, &status, &run.StartedAt, &finishedAt,
		&run.Stats.RawRows, &run.Stats.InvalidRows, &run.Stats.DuplicateRows,
		&run.Stats.FilingsSaved, &run.Stats.ClustersDetected,
		&run.Stats.WhalesDetected)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	run.Status = model.RunStatus(status)
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}

func validateRunStatus(status model.RunStatus) error {
	switch status {
	case model.RunRunning, model.RunCompleted, model.RunFailed:
		return nil
	default:
		return fmt.Errorf("%w: run status %q", ErrInvalidRun, status)
	}
}
