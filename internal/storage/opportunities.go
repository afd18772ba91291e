package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
)

// SaveOpportunities persists the detection results for a run. The
// type-specific payload is stored as JSON in the detail column so the
// cluster and whale shapes can diverge without schema churn.
func (s *SQLiteStorage) SaveOpportunities(ctx context.Context, runID string, opportunities []model.Opportunity) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(runID, "runID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO opportunities (run_id, ticker, type, score, detail)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range opportunities {
		opp := &opportunities[i]
		detail, err := marshalDetail(opp)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, opp.Ticker(), string(opp.Type), opp.Score(), detail); err != nil {
			return fmt.Errorf("failed to insert opportunity %s: %w", opp.Ticker(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit opportunities: %w", err)
	}
	return nil
}

// GetOpportunitiesByRun returns the opportunities recorded for a run,
// highest score first.
func (s *SQLiteStorage) GetOpportunitiesByRun(ctx context.Context, runID string) ([]model.Opportunity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, detail FROM opportunities
		WHERE run_id = ?
		ORDER BY score DESC, ticker ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var opportunities []model.Opportunity
	for rows.Next() {
		var oppType, detail string
		if err := rows.Scan(&oppType, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opp, err := unmarshalDetail(model.OpportunityType(oppType), detail)
		if err != nil {
			return nil, err
		}
		opportunities = append(opportunities, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate opportunities: %w", err)
	}

	return opportunities, nil
}

// GetLatestOpportunities returns the opportunities from the most recent
// completed run, or ErrNotFound when no run has completed yet.
func (s *SQLiteStorage) GetLatestOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	run, err := s.latestRunWithStatus(ctx, model.RunCompleted)
	if err != nil {
		return nil, err
	}
	return s.GetOpportunitiesByRun(ctx, run.ID)
}

func marshalDetail(opp *model.Opportunity) (string, error) {
	var payload any
	switch opp.Type {
	case model.TypeCluster:
		payload = opp.Cluster
	case model.TypeWhale:
		payload = opp.Whale
	default:
		return "", fmt.Errorf("%w: unknown opportunity type %q", common.ErrInvalidRecord, opp.Type)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal opportunity detail: %w", err)
	}
	return string(data), nil
}

func unmarshalDetail(oppType model.OpportunityType, detail string) (model.Opportunity, error) {
	switch oppType {
	case model.TypeCluster:
		var cluster model.ClusterOpportunity
		if err := json.Unmarshal([]byte(detail), &cluster); err != nil {
			return model.Opportunity{}, fmt.Errorf("failed to unmarshal cluster detail: %w", err)
		}
		return model.NewClusterOpportunity(&cluster), nil
	case model.TypeWhale:
		var whale model.WhaleOpportunity
		if err := json.Unmarshal([]byte(detail), &whale); err != nil {
			return model.Opportunity{}, fmt.Errorf("failed to unmarshal whale detail: %w", err)
		}
		return model.NewWhaleOpportunity(&whale), nil
	default:
		return model.Opportunity{}, fmt.Errorf("%w: unknown opportunity type %q", common.ErrInvalidRecord, oppType)
	}
}
