package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mfuentes/insider-scout/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidFiling = errors.New("invalid filing")
	ErrInvalidRun    = errors.New("invalid run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateFilings validates a slice of filings before persisting.
func validateFilings(filings []model.NormalizedFiling) error {
	if filings == nil {
		return fmt.Errorf("%w: filings", ErrNilParameter)
	}

	for i, filing := range filings {
		if err := validateFiling(&filing); err != nil {
			return fmt.Errorf("filing at index %d: %w", i, err)
		}
	}
	return nil
}

// validateFiling validates a single filing.
func validateFiling(filing *model.NormalizedFiling) error {
	if filing.Ticker == "" {
		return fmt.Errorf("%w: missing ticker", ErrInvalidFiling)
	}
	if filing.InsiderName == "" {
		return fmt.Errorf("%w: missing insider name", ErrInvalidFiling)
	}
	if filing.TransactionValue == 0 {
		return fmt.Errorf("%w: zero transaction value", ErrInvalidFiling)
	}
	return nil
}
