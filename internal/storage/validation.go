package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/credlens/credlens/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidReport = errors.New("invalid report")
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

// validateReport validates a report before persisting.
func validateReport(report *model.AnalysisReport) error {
	if report == nil {
		return fmt.Errorf("%w: report", ErrNilParameter)
	}
	if report.GeneratedAt.IsZero() {
		return fmt.Errorf("%w: missing generation timestamp", ErrInvalidReport)
	}
	if report.CIBIL.Score < model.CIBILMinScore || report.CIBIL.Score > model.CIBILMaxScore {
		return fmt.Errorf("%w: score %d outside valid range", ErrInvalidReport, report.CIBIL.Score)
	}
	if report.Confidence < 0 || report.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidReport)
	}
	return nil
}
