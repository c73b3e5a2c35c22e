// Package ingest provides file-based adapters that turn extracted document
// records into the typed inputs the engine consumes. This is the single
// place where absent or null numeric fields are coerced: amounts become 0,
// absent balances become -1 (untrusted), unparseable dates become the zero
// date and are excluded by classification downstream.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/credlens/credlens/internal/model"
)

// ledger date layouts accepted from extraction output, most specific first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02T15:04:05Z07:00",
}

// LedgerRow is one extracted bank statement row. Numeric fields are
// pointers so that null and absent values are distinguishable from zero.
type LedgerRow struct {
	Date      string   `json:"date"`
	Narration string   `json:"narration"`
	Debit     *float64 `json:"debit"`
	Credit    *float64 `json:"credit"`
	Balance   *float64 `json:"balance"`
}

// LedgerDocument is the on-disk JSON shape of an extracted bank ledger.
type LedgerDocument struct {
	Applicant    string      `json:"applicant,omitempty"`
	EmployerHint string      `json:"employer_hint,omitempty"`
	Confidence   float64     `json:"confidence"`
	Transactions []LedgerRow `json:"transactions"`
}

// SalarySlipDocument is the on-disk JSON shape of an extracted salary-slip
// summary.
type SalarySlipDocument struct {
	EmployerName       string  `json:"employer_name,omitempty"`
	AverageNetSalary   float64 `json:"average_net_salary"`
	AverageGrossSalary float64 `json:"average_gross_salary"`
	ConsistencyMonths  int     `json:"consistency_months"`
	Confidence         float64 `json:"confidence"`
}

// TaxReturnDocument is the on-disk JSON shape of an extracted tax-return
// summary.
type TaxReturnDocument struct {
	AverageAnnualIncome  float64 `json:"average_annual_income"`
	AverageMonthlyIncome float64 `json:"average_monthly_income"`
	Form16Income         float64 `json:"form16_income,omitempty"`
	Confidence           float64 `json:"confidence"`
}

// ParseLedger decodes a ledger document and converts its rows into model
// transactions.
func ParseLedger(r io.Reader) (*LedgerDocument, []model.Transaction, error) {
	var doc LedgerDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode ledger document: %w", err)
	}

	txns := make([]model.Transaction, 0, len(doc.Transactions))
	malformed := 0
	for _, row := range doc.Transactions {
		date, ok := parseDate(row.Date)
		if !ok {
			malformed++
		}
		txns = append(txns, model.Transaction{
			Date:      date,
			Narration: row.Narration,
			Debit:     amountOrZero(row.Debit),
			Credit:    amountOrZero(row.Credit),
			Balance:   balanceOrUntrusted(row.Balance),
		})
	}
	if malformed > 0 {
		slog.Warn("Ledger rows with unparseable dates will be excluded from classification",
			"count", malformed)
	}

	return &doc, txns, nil
}

// ParseSalarySlip decodes a salary-slip summary document.
func ParseSalarySlip(r io.Reader) (*SalarySlipDocument, *model.SalarySlipSummary, error) {
	var doc SalarySlipDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode salary-slip document: %w", err)
	}

	return &doc, &model.SalarySlipSummary{
		EmployerName:       doc.EmployerName,
		AverageNetSalary:   nonNegative(doc.AverageNetSalary),
		AverageGrossSalary: nonNegative(doc.AverageGrossSalary),
		ConsistencyMonths:  doc.ConsistencyMonths,
	}, nil
}

// ParseTaxReturn decodes a tax-return summary document.
func ParseTaxReturn(r io.Reader) (*TaxReturnDocument, *model.TaxReturnSummary, error) {
	var doc TaxReturnDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode tax-return document: %w", err)
	}

	return &doc, &model.TaxReturnSummary{
		AverageAnnualIncome:  nonNegative(doc.AverageAnnualIncome),
		AverageMonthlyIncome: nonNegative(doc.AverageMonthlyIncome),
		Form16Income:         nonNegative(doc.Form16Income),
	}, nil
}

// parseDate tries each accepted layout; a row that matches none is
// malformed and keeps the zero date.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func amountOrZero(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

// balanceOrUntrusted marks absent balances as -1 so balance aggregation
// skips them instead of treating them as a zero balance.
func balanceOrUntrusted(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
