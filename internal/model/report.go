package model

import "time"

// BalanceSummary holds the aggregated balance figures for a statement period.
type BalanceSummary struct {
	AverageBalance float64 `json:"average_balance"`
	MinimumBalance float64 `json:"minimum_balance"`
}

// AnalysisReport is the full output bundle for one applicant: the FOIR
// result, the CIBIL estimate, balance aggregates, cross-validation warnings,
// and the overall extraction confidence in [0,1].
type AnalysisReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Applicant   string         `json:"applicant,omitempty"`
	FOIR        FOIRResult     `json:"foir"`
	CIBIL       CIBILEstimate  `json:"cibil"`
	Balance     BalanceSummary `json:"balance"`
	// SalaryMonths is the longest run of consecutive calendar months with
	// salary evidence in the ledger.
	SalaryMonths int `json:"salary_months"`
	// ActiveLoanSources is the count of distinct recurring EMI amounts.
	ActiveLoanSources int      `json:"active_loan_sources"`
	BounceIncidents   int      `json:"bounce_incidents"`
	Warnings          []string `json:"warnings,omitempty"`
	Confidence        float64  `json:"confidence"`
}
