package model

// FOIRStatus is the risk band derived from the FOIR percentage.
type FOIRStatus string

// FOIR bands, ordered. Lower bound inclusive: LOW < 40, MEDIUM [40,55),
// HIGH [55,65), CRITICAL >= 65.
const (
	FOIRLow      FOIRStatus = "LOW"
	FOIRMedium   FOIRStatus = "MEDIUM"
	FOIRHigh     FOIRStatus = "HIGH"
	FOIRCritical FOIRStatus = "CRITICAL"
)

// FOIRResult is the fixed-obligation-to-income computation output. It is
// constructed once per computation and never mutated.
type FOIRResult struct {
	Percentage         float64
	Status             FOIRStatus
	GrossMonthlyIncome float64
	NetMonthlyIncome   float64
	MonthlyEMI         float64
	// AvailableIncome is net income minus EMI; negative signals over-leverage.
	AvailableIncome float64
	EMIToIncome     float64
	// DebtServiceCoverage is net/EMI, or DSCRSentinel when EMI is zero.
	DebtServiceCoverage float64
	// IncomeSource records which reconciled source fed the calculation.
	// SourceNone marks the degenerate no-data case consumers must check.
	IncomeSource IncomeSource
}

// DSCRSentinel is the debt-service-coverage value reported when there is no
// EMI obligation at all.
const DSCRSentinel = 999.9
