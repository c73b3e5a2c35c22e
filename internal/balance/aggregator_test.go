package balance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/credlens/credlens/internal/model"
)

func txn(day int, balance float64) model.Transaction {
	return model.Transaction{
		Date:    time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
		Debit:   100,
		Balance: balance,
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		txns    []model.Transaction
		wantAvg float64
		wantMin float64
	}{
		{
			name: "empty ledger",
		},
		{
			name:    "single transaction: average equals minimum equals balance",
			txns:    []model.Transaction{txn(1, 5000)},
			wantAvg: 5000,
			wantMin: 5000,
		},
		{
			name: "day weighting favors the balance that persisted",
			txns: []model.Transaction{
				txn(1, 10000), // held for 9 days
				txn(10, 1000), // final transaction, weight 1
			},
			wantAvg: (10000*9 + 1000*1) / 10.0,
			wantMin: 1000,
		},
		{
			name: "same-day transactions weigh one day each",
			txns: []model.Transaction{
				txn(1, 4000),
				txn(1, 6000),
			},
			wantAvg: 5000,
			wantMin: 4000,
		},
		{
			name: "negative balances are untrusted and excluded",
			txns: []model.Transaction{
				txn(1, 3000),
				txn(5, -200),
				txn(9, 3000),
			},
			wantAvg: 3000,
			wantMin: 3000,
		},
		{
			name: "all balances negative yields zeros",
			txns: []model.Transaction{
				txn(1, -100),
				txn(2, -50),
			},
		},
		{
			name: "undated rows are malformed and excluded",
			txns: []model.Transaction{
				{Debit: 100, Balance: 1000000},
				txn(1, 100),
				txn(9, 100),
			},
			wantAvg: 100,
			wantMin: 100,
		},
		{
			name: "only undated rows yields zeros",
			txns: []model.Transaction{
				{Debit: 100, Balance: 5000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.txns)
			assert.InDelta(t, tt.wantAvg, got.AverageBalance, 0.01)
			assert.InDelta(t, tt.wantMin, got.MinimumBalance, 0.01)
		})
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	txns := []model.Transaction{txn(1, 100), txn(3, 250), txn(20, 90)}
	assert.Equal(t, Aggregate(txns), Aggregate(txns))
}
