// Package income merges salary evidence from independent document sources
// into a single trusted (gross, net) monthly income pair.
package income

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/credlens/credlens/internal/model"
)

// Options configures the reconciliation heuristics. The defaults are
// hand-tuned, not empirically calibrated.
type Options struct {
	// MismatchThreshold is the relative salary-slip vs bank-net difference
	// above which the conservative lower value wins.
	MismatchThreshold float64
	// FlatDeductionRate approximates net from gross when only a gross
	// figure is known (tax-return fallback).
	FlatDeductionRate float64
}

// DefaultOptions returns the standard reconciliation thresholds.
func DefaultOptions() Options {
	return Options{
		MismatchThreshold: 0.15,
		FlatDeductionRate: 0.18,
	}
}

// Reconciler resolves up to three income candidates into one result.
type Reconciler struct {
	opts Options
}

// NewReconciler creates a reconciler with the given options; zero-valued
// thresholds fall back to the defaults.
func NewReconciler(opts Options) *Reconciler {
	def := DefaultOptions()
	if opts.MismatchThreshold <= 0 {
		opts.MismatchThreshold = def.MismatchThreshold
	}
	if opts.FlatDeductionRate <= 0 {
		opts.FlatDeductionRate = def.FlatDeductionRate
	}
	return &Reconciler{opts: opts}
}

// Reconcile applies the trust hierarchy salary-slip > bank-salary >
// tax-return and the conservative conflict rule, returning the resolved
// income and any cross-validation warnings. A source with no usable net
// figure falls through to the next; an empty candidate map resolves to
// (0, 0) with SourceNone. Absent data is never an error.
func (r *Reconciler) Reconcile(candidates map[model.IncomeSource]model.IncomeCandidate) (model.ReconciledIncome, []string) {
	var warnings []string

	if slip, ok := candidates[model.SourceSalarySlip]; ok {
		resolved := model.ReconciledIncome{
			Source: model.SourceSalarySlip,
			Gross:  normalize(slip.Gross),
			Net:    normalize(slip.Net),
		}
		if resolved.Net == 0 && resolved.Gross > 0 {
			resolved.Net = resolved.Gross * (1 - r.opts.FlatDeductionRate)
		}

		if resolved.Net > 0 {
			bank, hasBank := candidates[model.SourceBankSalary]
			if hasBank {
				mismatch := math.Abs(resolved.Net-bank.Net) / resolved.Net
				if mismatch > r.opts.MismatchThreshold {
					warnings = append(warnings, fmt.Sprintf(
						"income mismatch detected: salary-slip net %.2f vs bank-detected net %.2f differ by %.1f%% (threshold %.0f%%)",
						resolved.Net, bank.Net, mismatch*100, r.opts.MismatchThreshold*100))

					// Conservative rule: the lower net wins so FOIR never
					// understates the obligation burden.
					if bank.Net < resolved.Net {
						resolved.Net = normalize(bank.Net)
						resolved.Gross = normalize(bank.Gross)
						resolved.Source = model.SourceBankSalary
					}
					slog.Debug("Resolved income conflict conservatively",
						"mismatch", mismatch,
						"source", resolved.Source,
						"net", resolved.Net)
				}
			}
			return resolved, warnings
		}
	}

	if bank, ok := candidates[model.SourceBankSalary]; ok {
		return model.ReconciledIncome{
			Source: model.SourceBankSalary,
			Gross:  normalize(bank.Gross),
			Net:    normalize(bank.Net),
		}, warnings
	}

	if tax, ok := candidates[model.SourceTaxReturn]; ok {
		gross := normalize(tax.Gross)
		net := normalize(tax.Net)
		if net == 0 && gross > 0 {
			net = gross * (1 - r.opts.FlatDeductionRate)
		}
		return model.ReconciledIncome{
			Source: model.SourceTaxReturn,
			Gross:  gross,
			Net:    net,
		}, warnings
	}

	return model.ReconciledIncome{Source: model.SourceNone}, warnings
}

// normalize coerces malformed numeric evidence to zero at the component
// boundary.
func normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
