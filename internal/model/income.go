package model

// IncomeSource identifies where an income estimate came from.
type IncomeSource string

// Income sources in descending trust order.
const (
	// SourceSalarySlip is income extracted from salary slips.
	SourceSalarySlip IncomeSource = "salary_slip"
	// SourceBankSalary is income detected from salary credits in the ledger.
	SourceBankSalary IncomeSource = "bank_salary"
	// SourceTaxReturn is income derived from tax-return annual averages.
	SourceTaxReturn IncomeSource = "tax_return"
	// SourceNone indicates no income evidence was available.
	SourceNone IncomeSource = "none"
)

// TrustPriority returns the trust rank of a source; lower is more trusted.
func (s IncomeSource) TrustPriority() int {
	switch s {
	case SourceSalarySlip:
		return 0
	case SourceBankSalary:
		return 1
	case SourceTaxReturn:
		return 2
	default:
		return 3
	}
}

// IncomeCandidate is one monthly income estimate from one source.
type IncomeCandidate struct {
	Source IncomeSource
	Gross  float64
	Net    float64
}

// SalarySlipSummary holds the averaged figures extracted from salary slips.
type SalarySlipSummary struct {
	EmployerName       string
	AverageNetSalary   float64
	AverageGrossSalary float64
	ConsistencyMonths  int
}

// TaxReturnSummary holds the figures extracted from tax-return documents.
// Form16Income is optional and only used for cross-validation warnings.
type TaxReturnSummary struct {
	AverageAnnualIncome  float64
	AverageMonthlyIncome float64
	Form16Income         float64
}

// ReconciledIncome is the single (gross, net) pair the reconciler resolves
// to, tagged with the source ultimately used for audit.
type ReconciledIncome struct {
	Source IncomeSource
	Gross  float64
	Net    float64
}
