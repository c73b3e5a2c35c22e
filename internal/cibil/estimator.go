// Package cibil estimates a CIBIL-style credit score from indirect ledger
// signals using a weighted multi-factor model. The sub-score thresholds are
// not derived from bureau ground truth; the result is an estimate, not a
// bureau score.
package cibil

import (
	"fmt"
	"math"

	"github.com/credlens/credlens/internal/model"
)

// Weights are the fixed factor weights of the composite model. They must sum
// to 1 for the score mapping to stay range-bound.
type Weights struct {
	Payment     float64
	Utilization float64
	Stability   float64
	Mix         float64
}

// DefaultWeights returns the standard weighting scheme.
func DefaultWeights() Weights {
	return Weights{
		Payment:     0.35,
		Utilization: 0.30,
		Stability:   0.25,
		Mix:         0.10,
	}
}

// Input carries the signals the estimator consumes.
type Input struct {
	// FOIRPercentage is the fixed-obligation ratio from the FOIR calculator.
	FOIRPercentage float64
	// PaymentIncidents is the total bounce/dishonor/insufficient-fund count.
	PaymentIncidents int
	// SalaryMonths is the longest consecutive run of months with salary
	// evidence.
	SalaryMonths int
	// LoanSources is the count of distinct active EMI obligations.
	LoanSources int
}

// Estimator computes score estimates under a fixed weighting scheme.
type Estimator struct {
	weights Weights
}

// NewEstimator creates an estimator; a zero-valued weight set falls back to
// the defaults.
func NewEstimator(weights Weights) *Estimator {
	if weights.Payment+weights.Utilization+weights.Stability+weights.Mix == 0 {
		weights = DefaultWeights()
	}
	return &Estimator{weights: weights}
}

// Estimate maps the input signals to an estimated score in [300, 900] with
// band, risk level, and explanatory factor lists.
func (e *Estimator) Estimate(in Input) model.CIBILEstimate {
	components := model.CIBILComponents{
		PaymentHistory:    paymentScore(in.PaymentIncidents),
		CreditUtilization: utilizationScore(in.FOIRPercentage),
		IncomeStability:   stabilityScore(in.SalaryMonths),
		CreditMix:         mixScore(in.LoanSources),
	}

	composite := components.PaymentHistory*e.weights.Payment +
		components.CreditUtilization*e.weights.Utilization +
		components.IncomeStability*e.weights.Stability +
		components.CreditMix*e.weights.Mix

	score := int(math.Round(model.CIBILMinScore + composite*600))
	if score < model.CIBILMinScore {
		score = model.CIBILMinScore
	}
	if score > model.CIBILMaxScore {
		score = model.CIBILMaxScore
	}

	band, risk := bandFor(score)

	estimate := model.CIBILEstimate{
		Score:      score,
		Band:       band,
		RiskLevel:  risk,
		Components: components,
	}
	explain(&estimate, in)
	return estimate
}

// paymentScore is a monotonically decreasing step function of incident
// count.
func paymentScore(incidents int) float64 {
	switch {
	case incidents == 0:
		return 0.9
	case incidents <= 2:
		return 0.6
	default:
		return 0.3
	}
}

// utilizationScore rewards a low fixed-obligation ratio.
func utilizationScore(foirPercentage float64) float64 {
	switch {
	case foirPercentage < 30:
		return 0.9
	case foirPercentage < 50:
		return 0.7
	default:
		return 0.4
	}
}

// stabilityScore rewards long consistent salary history.
func stabilityScore(months int) float64 {
	switch {
	case months >= 6:
		return 0.9
	case months >= 3:
		return 0.7
	default:
		return 0.5
	}
}

// mixScore scales with distinct active loan sources, 0.5 baseline when
// there are none.
func mixScore(sources int) float64 {
	if sources <= 0 {
		return 0.5
	}
	return math.Min(0.5+0.15*float64(sources), 0.9)
}

// bandFor maps a score to its band label and risk level. Below 600 the band
// is a dynamically computed 50-point window around the score.
func bandFor(score int) (string, model.RiskLevel) {
	switch {
	case score >= 750:
		return "750-900", model.RiskLow
	case score >= 700:
		return "700-749", model.RiskMediumLow
	case score >= 650:
		return "650-699", model.RiskMedium
	case score >= 600:
		return "600-649", model.RiskMediumHigh
	default:
		low := score - 25
		if low < model.CIBILMinScore {
			low = model.CIBILMinScore
		}
		return fmt.Sprintf("%d-%d", low, low+49), model.RiskHigh
	}
}

// explain fills the human-readable factor lists from the thresholds each
// sub-score crossed. The strings are audit output only.
func explain(estimate *model.CIBILEstimate, in Input) {
	c := estimate.Components

	if c.PaymentHistory >= 0.9 {
		estimate.PositiveFactors = append(estimate.PositiveFactors,
			"no bounce or dishonor incidents in the statement period")
	} else {
		estimate.NegativeFactors = append(estimate.NegativeFactors,
			fmt.Sprintf("%d bounce/dishonor incidents observed", in.PaymentIncidents))
	}
	if in.PaymentIncidents > 2 {
		estimate.RiskIndicators = append(estimate.RiskIndicators,
			"repeated payment failures suggest cash-flow stress")
	}

	if c.CreditUtilization >= 0.9 {
		estimate.PositiveFactors = append(estimate.PositiveFactors,
			"fixed obligations are a small share of income")
	} else if c.CreditUtilization <= 0.4 {
		estimate.NegativeFactors = append(estimate.NegativeFactors,
			fmt.Sprintf("high fixed-obligation ratio (%.1f%%)", in.FOIRPercentage))
		estimate.RiskIndicators = append(estimate.RiskIndicators,
			"obligation ratio above 50% of net income")
	}

	if c.IncomeStability >= 0.9 {
		estimate.PositiveFactors = append(estimate.PositiveFactors,
			fmt.Sprintf("consistent salary credits across %d consecutive months", in.SalaryMonths))
	} else if c.IncomeStability <= 0.5 {
		estimate.NegativeFactors = append(estimate.NegativeFactors,
			"insufficient consistent salary history")
	}

	if in.LoanSources == 0 {
		estimate.NegativeFactors = append(estimate.NegativeFactors,
			"no active credit lines to evidence repayment behavior")
	} else if c.CreditMix >= 0.8 {
		estimate.PositiveFactors = append(estimate.PositiveFactors,
			fmt.Sprintf("healthy mix of %d active loan obligations", in.LoanSources))
	}
}
