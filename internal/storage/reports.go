package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/credlens/credlens/internal/common"
	"github.com/credlens/credlens/internal/model"
)

// SavedReport is a persisted analysis report with its storage metadata.
type SavedReport struct {
	ID          int64
	Applicant   string
	GeneratedAt time.Time
	Report      model.AnalysisReport
}

// SaveReport persists a generated report and returns its storage ID.
func (s *ReportStore) SaveReport(ctx context.Context, report *model.AnalysisReport) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateReport(report); err != nil {
		return 0, err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (
			applicant, generated_at, foir_percentage, foir_status,
			cibil_score, risk_level, income_source, confidence, report_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Applicant,
		report.GeneratedAt,
		report.FOIR.Percentage,
		string(report.FOIR.Status),
		report.CIBIL.Score,
		string(report.CIBIL.RiskLevel),
		string(report.FOIR.IncomeSource),
		report.Confidence,
		string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}
	return id, nil
}

// GetReport loads one saved report by ID.
func (s *ReportStore) GetReport(ctx context.Context, id int64) (*SavedReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, applicant, generated_at, report_json
		FROM reports WHERE id = ?`, id)

	saved, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %d: %w", id, common.ErrNotFound)
	}
	return saved, err
}

// ListReports returns saved reports, newest first. An empty applicant lists
// all applicants.
func (s *ReportStore) ListReports(ctx context.Context, applicant string, limit int) ([]SavedReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, applicant, generated_at, report_json
		FROM reports`
	args := []any{}
	if applicant != "" {
		query += ` WHERE applicant = ?`
		args = append(args, applicant)
	}
	query += ` ORDER BY generated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []SavedReport
	for rows.Next() {
		saved, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*SavedReport, error) {
	var saved SavedReport
	var payload string

	if err := row.Scan(&saved.ID, &saved.Applicant, &saved.GeneratedAt, &payload); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &saved.Report); err != nil {
		return nil, fmt.Errorf("%w: report %d payload: %v", common.ErrDatabaseCorrupted, saved.ID, err)
	}
	return &saved, nil
}
