// Package balance computes time-weighted balance aggregates over a
// statement period.
package balance

import (
	"github.com/credlens/credlens/internal/model"
)

// Aggregate computes the day-weighted average balance and the minimum
// balance across the ledger. Rows with a zero date or a negative running
// balance are malformed or untrusted and excluded. A balance weighs the
// number of days it persisted until the next transaction; the final balance
// weighs one day.
func Aggregate(txns []model.Transaction) model.BalanceSummary {
	ordered := model.NormalizeTransactions(txns)

	trusted := make([]model.Transaction, 0, len(ordered))
	for _, t := range ordered {
		if !t.Date.IsZero() && t.Balance >= 0 {
			trusted = append(trusted, t)
		}
	}
	if len(trusted) == 0 {
		return model.BalanceSummary{}
	}

	var weightedSum, totalWeight float64
	minBalance := trusted[0].Balance

	for i, t := range trusted {
		weight := 1.0
		if i < len(trusted)-1 {
			days := trusted[i+1].Date.Sub(t.Date).Hours() / 24
			if days > 1 {
				weight = days
			}
		}

		weightedSum += t.Balance * weight
		totalWeight += weight

		if t.Balance < minBalance {
			minBalance = t.Balance
		}
	}

	return model.BalanceSummary{
		AverageBalance: weightedSum / totalWeight,
		MinimumBalance: minBalance,
	}
}
