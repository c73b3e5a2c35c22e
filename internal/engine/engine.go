// Package engine orchestrates the credit-risk analysis pipeline: ledger
// classification, balance aggregation, income reconciliation, FOIR, and the
// CIBIL estimate.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/credlens/credlens/internal/balance"
	"github.com/credlens/credlens/internal/cibil"
	"github.com/credlens/credlens/internal/classify"
	"github.com/credlens/credlens/internal/config"
	"github.com/credlens/credlens/internal/foir"
	"github.com/credlens/credlens/internal/income"
	"github.com/credlens/credlens/internal/model"
)

// Input is the combined, already-extracted document bundle for one
// applicant. Every field is optional; the engine produces a well-formed (if
// degenerate) report for any combination, including a fully empty one.
type Input struct {
	Applicant    string
	Ledger       []model.Transaction
	SalarySlip   *model.SalarySlipSummary
	TaxReturn    *model.TaxReturnSummary
	EmployerHint string
	// Confidences are the per-source extraction confidences supplied by the
	// extraction layer, each in [0,1].
	Confidences []float64
}

// AnalysisEngine runs the deterministic scoring pipeline. It holds no
// mutable state and is safe to share across goroutines for independent
// applicants.
type AnalysisEngine struct {
	classifier *classify.Classifier
	reconciler *income.Reconciler
	estimator  *cibil.Estimator
	cache      *income.Cache
	cfg        config.Config
	now        func() time.Time
}

// New creates an engine from the given configuration using the built-in
// classification vocabulary.
func New(cfg config.Config) *AnalysisEngine {
	return NewWithVocabulary(cfg, classify.MustDefaultVocabulary())
}

// NewWithVocabulary creates an engine over a custom vocabulary table.
func NewWithVocabulary(cfg config.Config, vocab *classify.Vocabulary) *AnalysisEngine {
	return &AnalysisEngine{
		classifier: classify.NewClassifierWithRecurrence(vocab, cfg.EMIRecurrenceMonths),
		reconciler: income.NewReconciler(income.Options{
			MismatchThreshold: cfg.SalaryBankMismatch,
			FlatDeductionRate: cfg.FlatDeductionRate,
		}),
		estimator: cibil.NewEstimator(cibil.Weights{
			Payment:     cfg.WeightPayment,
			Utilization: cfg.WeightUtilization,
			Stability:   cfg.WeightStability,
			Mix:         cfg.WeightMix,
		}),
		cfg: cfg,
		now: time.Now,
	}
}

// UseReconcileCache attaches a caller-owned reconciliation cache. The engine
// never creates one itself; the cache's lifetime belongs to the caller.
func (e *AnalysisEngine) UseReconcileCache(cache *income.Cache) {
	e.cache = cache
}

// Analyze runs the full pipeline over one applicant's documents. It never
// fails: malformed rows are excluded, absent sources fall through the trust
// chain, and conflicts surface as warnings on the report.
func (e *AnalysisEngine) Analyze(in Input) model.AnalysisReport {
	employerHint := in.EmployerHint
	if employerHint == "" && in.SalarySlip != nil {
		employerHint = in.SalarySlip.EmployerName
	}

	classified := e.classifier.Classify(in.Ledger, employerHint)
	balances := balance.Aggregate(in.Ledger)

	candidates := e.buildCandidates(in, classified)
	resolved, warnings := e.reconcile(candidates)
	warnings = append(warnings, e.crossValidateTax(in.TaxReturn)...)

	foirResult := foir.Calculate(resolved, classified.TotalMonthlyEMI())

	salaryMonths := classified.ConsecutiveSalaryMonths()
	if in.SalarySlip != nil && in.SalarySlip.ConsistencyMonths > salaryMonths {
		salaryMonths = in.SalarySlip.ConsistencyMonths
	}

	estimate := e.estimator.Estimate(cibil.Input{
		FOIRPercentage:   foirResult.Percentage,
		PaymentIncidents: classified.PaymentIncidents(),
		SalaryMonths:     salaryMonths,
		LoanSources:      classified.DistinctEMISources(),
	})

	report := model.AnalysisReport{
		GeneratedAt:       e.now(),
		Applicant:         in.Applicant,
		FOIR:              foirResult,
		CIBIL:             estimate,
		Balance:           balances,
		SalaryMonths:      salaryMonths,
		ActiveLoanSources: classified.DistinctEMISources(),
		BounceIncidents:   classified.PaymentIncidents(),
		Warnings:          warnings,
		Confidence:        meanConfidence(in.Confidences),
	}

	slog.Info("Analysis complete",
		"applicant", in.Applicant,
		"foir", fmt.Sprintf("%.2f", foirResult.Percentage),
		"foir_status", foirResult.Status,
		"cibil_score", estimate.Score,
		"risk", estimate.RiskLevel,
		"income_source", foirResult.IncomeSource,
		"warnings", len(warnings))

	return report
}

// buildCandidates assembles the income candidate map from whichever sources
// produced evidence.
func (e *AnalysisEngine) buildCandidates(in Input, classified classify.Result) map[model.IncomeSource]model.IncomeCandidate {
	candidates := make(map[model.IncomeSource]model.IncomeCandidate)

	if in.SalarySlip != nil && (in.SalarySlip.AverageNetSalary > 0 || in.SalarySlip.AverageGrossSalary > 0) {
		candidates[model.SourceSalarySlip] = model.IncomeCandidate{
			Source: model.SourceSalarySlip,
			Gross:  in.SalarySlip.AverageGrossSalary,
			Net:    in.SalarySlip.AverageNetSalary,
		}
	}

	if bankSalary := classified.AverageMonthlySalary(); bankSalary > 0 {
		candidates[model.SourceBankSalary] = model.IncomeCandidate{
			Source: model.SourceBankSalary,
			Gross:  bankSalary,
			Net:    bankSalary,
		}
	}

	if in.TaxReturn != nil {
		monthly := in.TaxReturn.AverageMonthlyIncome
		if monthly <= 0 && in.TaxReturn.AverageAnnualIncome > 0 {
			monthly = in.TaxReturn.AverageAnnualIncome / 12
		}
		if monthly > 0 {
			candidates[model.SourceTaxReturn] = model.IncomeCandidate{
				Source: model.SourceTaxReturn,
				Gross:  monthly,
			}
		}
	}

	return candidates
}

// reconcile routes through the caller-owned cache when one is attached.
func (e *AnalysisEngine) reconcile(candidates map[model.IncomeSource]model.IncomeCandidate) (model.ReconciledIncome, []string) {
	if e.cache != nil {
		return e.cache.Reconcile(e.reconciler, candidates)
	}
	return e.reconciler.Reconcile(candidates)
}

// crossValidateTax emits warnings for internal tax-return inconsistencies:
// monthly x12 vs annual, and ITR vs Form-16 when a Form-16 figure exists.
func (e *AnalysisEngine) crossValidateTax(tax *model.TaxReturnSummary) []string {
	if tax == nil {
		return nil
	}

	var warnings []string

	if tax.AverageAnnualIncome > 0 && tax.AverageMonthlyIncome > 0 {
		mismatch := math.Abs(tax.AverageMonthlyIncome*12-tax.AverageAnnualIncome) / tax.AverageAnnualIncome
		if mismatch > e.cfg.MonthlyAnnualMismatch {
			warnings = append(warnings, fmt.Sprintf(
				"tax-return monthly income x12 (%.2f) differs from annual income (%.2f) by %.1f%% (threshold %.0f%%)",
				tax.AverageMonthlyIncome*12, tax.AverageAnnualIncome,
				mismatch*100, e.cfg.MonthlyAnnualMismatch*100))
		}
	}

	if tax.AverageAnnualIncome > 0 && tax.Form16Income > 0 {
		mismatch := math.Abs(tax.AverageAnnualIncome-tax.Form16Income) / tax.AverageAnnualIncome
		if mismatch > e.cfg.ITRForm16Mismatch {
			warnings = append(warnings, fmt.Sprintf(
				"ITR annual income (%.2f) differs from Form-16 income (%.2f) by %.1f%% (threshold %.0f%%)",
				tax.AverageAnnualIncome, tax.Form16Income,
				mismatch*100, e.cfg.ITRForm16Mismatch*100))
		}
	}

	return warnings
}

// meanConfidence averages the per-source extraction confidences, clamping
// each into [0,1]. No sources means no confidence.
func meanConfidence(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var total float64
	for _, c := range confidences {
		if math.IsNaN(c) || c < 0 {
			c = 0
		}
		if c > 1 {
			c = 1
		}
		total += c
	}
	return total / float64(len(confidences))
}
