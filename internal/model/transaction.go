// Package model defines the core data structures for the credlens engine.
package model

import (
	"math"
	"sort"
	"time"
)

// Transaction represents a single bank ledger entry handed to the engine by
// the extraction layer. Debit and Credit are mutually exclusive; a negative
// Balance marks the running balance as untrusted for that row.
type Transaction struct {
	Date      time.Time
	Narration string
	Debit     float64
	Credit    float64
	Balance   float64
}

// IsCredit reports whether the entry is a credit-side transaction.
func (t Transaction) IsCredit() bool {
	return t.Credit > 0 && t.Debit == 0
}

// IsDebit reports whether the entry is a debit-side transaction.
func (t Transaction) IsDebit() bool {
	return t.Debit > 0
}

// Month returns the calendar month key (YYYY-MM) of the transaction date.
func (t Transaction) Month() string {
	return t.Date.Format("2006-01")
}

// NormalizeTransactions applies the single input normalization step: NaN,
// Inf, and negative debit/credit amounts are coerced to zero, and the
// sequence is sorted ascending by date with input order preserved for ties.
// Rows with a zero date are kept; classification excludes them itself so the
// exclusion is visible at one documented point per component.
func NormalizeTransactions(txns []Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	copy(out, txns)

	for i := range out {
		out[i].Debit = normalizeAmount(out[i].Debit)
		out[i].Credit = normalizeAmount(out[i].Credit)
		if math.IsNaN(out[i].Balance) || math.IsInf(out[i].Balance, 0) {
			out[i].Balance = -1
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out
}

// normalizeAmount coerces absent or malformed numeric values to zero.
func normalizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
