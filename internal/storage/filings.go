package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mfuentes/insider-scout/internal/model"
	"github.com/mfuentes/insider-scout/internal/service"
)

// SaveFilings persists filings, ignoring rows whose hash is already stored.
// It returns how many rows were actually inserted.
func (s *SQLiteStorage) SaveFilings(ctx context.Context, filings []model.NormalizedFiling) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateFilings(filings); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO filings (
			hash, ticker, company_name, insider_name, title, transaction_type,
			trade_date, filing_date, price, quantity, shares_owned,
			ownership_change, transaction_value
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i := range filings {
		f := &filings[i]
		result, err := stmt.ExecContext(ctx,
			f.Hash(), f.Ticker, f.CompanyName, f.InsiderName, f.Title,
			f.TransactionType, nullTime(f.TradeDate), nullTime(f.FilingDate),
			f.Price, f.Quantity, f.SharesOwned, f.OwnershipChange,
			f.TransactionValue)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert filing %s: %w", f.Ticker, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to count inserted rows: %w", err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit filings: %w", err)
	}
	return inserted, nil
}

// GetFilings returns filings matching the filter, newest trade first.
func (s *SQLiteStorage) GetFilings(ctx context.Context, filter service.FilingFilter) ([]model.NormalizedFiling, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT ticker, company_name, insider_name, title, transaction_type,
			trade_date, filing_date, price, quantity, shares_owned,
			ownership_change, transaction_value
		FROM filings WHERE 1=1`
	var args []any

	if filter.Since != nil {
		query += " AND trade_date >= ?"
		args = append(args, *filter.Since)
	}
	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, filter.Ticker)
	}
	query += " ORDER BY trade_date DESC, ticker ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query filings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	now := time.Now()
	var filings []model.NormalizedFiling
	for rows.Next() {
		var f model.NormalizedFiling
		var tradeDate, filingDate sql.NullTime
		if err := rows.Scan(
			&f.Ticker, &f.CompanyName, &f.InsiderName, &f.Title,
			&f.TransactionType, &tradeDate, &filingDate, &f.Price,
			&f.Quantity, &f.SharesOwned, &f.OwnershipChange,
			&f.TransactionValue); err != nil {
			return nil, fmt.Errorf("failed to scan filing: %w", err)
		}
		if tradeDate.Valid {
			f.TradeDate = tradeDate.Time
			f.DaysSinceTrade = int(now.Sub(tradeDate.Time).Hours() / 24)
			if f.DaysSinceTrade < 0 {
				f.DaysSinceTrade = 0
			}
		} else {
			f.DaysSinceTrade = model.StaleDaysSentinel
		}
		if filingDate.Valid {
			f.FilingDate = filingDate.Time
		}
		filings = append(filings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate filings: %w", err)
	}

	return filings, nil
}

// nullTime maps the zero time to NULL so unparseable dates stay unparseable.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
