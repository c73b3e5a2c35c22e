package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credlens/credlens/internal/config"
	"github.com/credlens/credlens/internal/income"
	"github.com/credlens/credlens/internal/model"
)

func testConfig() config.Config {
	return config.Config{
		SalaryBankMismatch:    0.15,
		MonthlyAnnualMismatch: 0.25,
		ITRForm16Mismatch:     0.20,
		FlatDeductionRate:     0.18,
		EMIRecurrenceMonths:   3,
		WeightPayment:         0.35,
		WeightUtilization:     0.30,
		WeightStability:       0.25,
		WeightMix:             0.10,
	}
}

func ledgerMonth(year int, month time.Month, salary, emi, balance float64) []model.Transaction {
	return []model.Transaction{
		{
			Date:      time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
			Narration: "NEFT SALARY ACME CORP",
			Credit:    salary,
			Balance:   balance,
		},
		{
			Date:      time.Date(year, month, 5, 0, 0, 0, 0, time.UTC),
			Narration: "EMI HDFC HOME LOAN",
			Debit:     emi,
			Balance:   balance - emi,
		},
	}
}

func sixMonthLedger() []model.Transaction {
	var txns []model.Transaction
	for m := time.January; m <= time.June; m++ {
		txns = append(txns, ledgerMonth(2024, m, 50000, 15000, 80000)...)
	}
	return txns
}

func TestAnalyze_FullPipeline(t *testing.T) {
	e := New(testConfig())

	report := e.Analyze(Input{
		Applicant: "asha",
		Ledger:    sixMonthLedger(),
		SalarySlip: &model.SalarySlipSummary{
			EmployerName:       "ACME CORP",
			AverageGrossSalary: 60000,
			AverageNetSalary:   50000,
			ConsistencyMonths:  6,
		},
		Confidences: []float64{0.9, 0.8},
	})

	assert.Equal(t, "asha", report.Applicant)
	assert.Equal(t, model.SourceSalarySlip, report.FOIR.IncomeSource)
	assert.InDelta(t, 30.0, report.FOIR.Percentage, 0.01)
	assert.Equal(t, model.FOIRLow, report.FOIR.Status)
	assert.Equal(t, 6, report.SalaryMonths)
	assert.Equal(t, 1, report.ActiveLoanSources)
	assert.Zero(t, report.BounceIncidents)
	assert.GreaterOrEqual(t, report.CIBIL.Score, 700)
	assert.InDelta(t, 0.85, report.Confidence, 0.001)
	assert.InDelta(t, 65000, report.Balance.MinimumBalance, 0.01)
	assert.Empty(t, report.Warnings)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestAnalyze_EmptyInputProducesDegenerateReport(t *testing.T) {
	report := New(testConfig()).Analyze(Input{Applicant: "nobody"})

	assert.Equal(t, model.SourceNone, report.FOIR.IncomeSource)
	assert.Zero(t, report.FOIR.Percentage)
	assert.Equal(t, model.FOIRLow, report.FOIR.Status)
	assert.Zero(t, report.Confidence)
	assert.GreaterOrEqual(t, report.CIBIL.Score, model.CIBILMinScore)
	assert.LessOrEqual(t, report.CIBIL.Score, model.CIBILMaxScore)
}

func TestAnalyze_SalaryBankMismatchWarning(t *testing.T) {
	e := New(testConfig())

	// Declared slip net is far above what the ledger shows; the conservative
	// rule demotes to the bank figure and warns.
	report := e.Analyze(Input{
		Applicant: "ravi",
		Ledger:    sixMonthLedger(),
		SalarySlip: &model.SalarySlipSummary{
			EmployerName:     "ACME CORP",
			AverageNetSalary: 90000,
		},
	})

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "income mismatch detected")
	assert.Equal(t, model.SourceBankSalary, report.FOIR.IncomeSource)
	assert.InDelta(t, 50000, report.FOIR.NetMonthlyIncome, 0.01)
}

func TestAnalyze_TaxCrossValidationWarnings(t *testing.T) {
	e := New(testConfig())

	report := e.Analyze(Input{
		Applicant: "meena",
		TaxReturn: &model.TaxReturnSummary{
			AverageAnnualIncome:  1200000,
			AverageMonthlyIncome: 60000,  // x12 is 40% below the annual figure
			Form16Income:         700000, // 41.7% below the ITR figure
		},
	})

	require.Len(t, report.Warnings, 2)
	assert.Contains(t, report.Warnings[0], "differs from annual income")
	assert.Contains(t, report.Warnings[1], "Form-16")
	assert.Equal(t, model.SourceTaxReturn, report.FOIR.IncomeSource)
	// 60000 gross monthly, net after the 18% flat deduction.
	assert.InDelta(t, 49200, report.FOIR.NetMonthlyIncome, 0.01)
}

func TestAnalyze_TaxReturnFallbackDerivesMonthlyFromAnnual(t *testing.T) {
	e := New(testConfig())

	report := e.Analyze(Input{
		Applicant: "sunil",
		TaxReturn: &model.TaxReturnSummary{AverageAnnualIncome: 1200000},
	})

	assert.Equal(t, model.SourceTaxReturn, report.FOIR.IncomeSource)
	// 100000 gross monthly, net after the 18% flat deduction.
	assert.InDelta(t, 82000, report.FOIR.NetMonthlyIncome, 0.01)
}

func TestAnalyze_EmployerHintFallsBackToSlipEmployer(t *testing.T) {
	e := New(testConfig())

	ledger := []model.Transaction{
		{
			Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Narration: "NEFT CR GLOBEX INDUSTRIES",
			Credit:    45000,
			Balance:   45000,
		},
	}

	report := e.Analyze(Input{
		Applicant:  "kiran",
		Ledger:     ledger,
		SalarySlip: &model.SalarySlipSummary{EmployerName: "GLOBEX INDUSTRIES"},
	})

	// The credit carries no salary keyword; only the employer hint taken from
	// the slip makes it salary evidence.
	assert.Equal(t, model.SourceBankSalary, report.FOIR.IncomeSource)
	assert.InDelta(t, 45000, report.FOIR.NetMonthlyIncome, 0.01)
}

func TestAnalyze_UsesAttachedReconcileCache(t *testing.T) {
	e := New(testConfig())
	cache := income.NewCache(time.Minute)
	e.UseReconcileCache(cache)

	in := Input{
		Applicant:  "asha",
		SalarySlip: &model.SalarySlipSummary{AverageGrossSalary: 60000, AverageNetSalary: 50000},
	}

	first := e.Analyze(in)
	second := e.Analyze(in)

	assert.Equal(t, first.FOIR, second.FOIR)
}

func TestAnalyze_ConcurrentApplicantsWithSharedCache(t *testing.T) {
	e := New(testConfig())
	e.UseReconcileCache(income.NewCache(time.Minute))

	inputs := []Input{
		{Applicant: "asha", SalarySlip: &model.SalarySlipSummary{AverageGrossSalary: 60000, AverageNetSalary: 50000}},
		{Applicant: "ravi", Ledger: sixMonthLedger()},
		{Applicant: "meena", TaxReturn: &model.TaxReturnSummary{AverageAnnualIncome: 1200000, AverageMonthlyIncome: 60000}},
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				in := inputs[(worker+i)%len(inputs)]
				report := e.Analyze(in)
				assert.Equal(t, in.Applicant, report.Applicant)
			}
		}(w)
	}
	wg.Wait()
}

func TestAnalyze_Deterministic(t *testing.T) {
	e := New(testConfig())
	e.now = func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }

	in := Input{Applicant: "asha", Ledger: sixMonthLedger()}
	assert.Equal(t, e.Analyze(in), e.Analyze(in))
}

func TestMeanConfidence(t *testing.T) {
	assert.Zero(t, meanConfidence(nil))
	assert.InDelta(t, 0.85, meanConfidence([]float64{0.9, 0.8}), 0.001)
	// Out-of-range values are clamped before averaging.
	assert.InDelta(t, 0.5, meanConfidence([]float64{1.5, -0.5}), 0.001)
}
