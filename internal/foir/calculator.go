// Package foir computes the Fixed-Obligation-to-Income Ratio and its risk
// band from reconciled income and aggregated EMI obligation.
package foir

import (
	"math"

	"github.com/credlens/credlens/internal/model"
)

// Band thresholds, lower bound inclusive.
const (
	mediumThreshold   = 40.0
	highThreshold     = 55.0
	criticalThreshold = 65.0
)

// Calculate produces a FOIRResult from the reconciled income and the total
// monthly EMI. When net income is zero, the percentage is 100 if any EMI
// exists and 0 otherwise; both-absent is "no data", distinguishable through
// the SourceNone income source, not "zero risk".
func Calculate(income model.ReconciledIncome, monthlyEMI float64) model.FOIRResult {
	net := normalize(income.Net)
	gross := normalize(income.Gross)
	emi := normalize(monthlyEMI)

	var percentage float64
	switch {
	case net > 0:
		percentage = emi / net * 100
	case emi > 0:
		percentage = 100.0
	default:
		percentage = 0.0
	}

	ratio := 0.0
	if net > 0 {
		ratio = emi / net
	}

	coverage := model.DSCRSentinel
	if emi > 0 {
		coverage = net / emi
	}

	return model.FOIRResult{
		Percentage:          percentage,
		Status:              statusFor(percentage),
		GrossMonthlyIncome:  gross,
		NetMonthlyIncome:    net,
		MonthlyEMI:          emi,
		AvailableIncome:     net - emi,
		EMIToIncome:         ratio,
		DebtServiceCoverage: coverage,
		IncomeSource:        income.Source,
	}
}

// statusFor maps a FOIR percentage to its band.
func statusFor(percentage float64) model.FOIRStatus {
	switch {
	case percentage >= criticalThreshold:
		return model.FOIRCritical
	case percentage >= highThreshold:
		return model.FOIRHigh
	case percentage >= mediumThreshold:
		return model.FOIRMedium
	default:
		return model.FOIRLow
	}
}

func normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
