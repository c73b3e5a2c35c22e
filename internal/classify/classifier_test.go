package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credlens/credlens/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func credit(y int, m time.Month, d int, narration string, amount, balance float64) model.Transaction {
	return model.Transaction{Date: date(y, m, d), Narration: narration, Credit: amount, Balance: balance}
}

func debit(y int, m time.Month, d int, narration string, amount, balance float64) model.Transaction {
	return model.Transaction{Date: date(y, m, d), Narration: narration, Debit: amount, Balance: balance}
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(MustDefaultVocabulary())
}

func TestClassifier_SalaryDetection(t *testing.T) {
	tests := []struct {
		name         string
		txns         []model.Transaction
		employerHint string
		wantCredits  []float64
	}{
		{
			name: "salary vocabulary match",
			txns: []model.Transaction{
				credit(2024, time.January, 1, "NEFT SALARY JAN", 50000, 60000),
			},
			wantCredits: []float64{50000},
		},
		{
			name: "highest credit per month retained",
			txns: []model.Transaction{
				credit(2024, time.January, 1, "SALARY CREDIT", 48000, 50000),
				credit(2024, time.January, 15, "SALARY ARREARS", 52000, 90000),
			},
			wantCredits: []float64{52000},
		},
		{
			name: "employer hint token matches without salary vocabulary",
			txns: []model.Transaction{
				credit(2024, time.February, 1, "NEFT ACME INDUSTRIES PVT LTD", 45000, 45000),
			},
			employerHint: "Acme Industries",
			wantCredits:  []float64{45000},
		},
		{
			name: "short employer tokens are ignored",
			txns: []model.Transaction{
				credit(2024, time.February, 1, "NEFT TCS TRANSFER", 45000, 45000),
			},
			employerHint: "TCS",
			wantCredits:  nil,
		},
		{
			name: "debit narration with salary vocabulary is not a salary hit",
			txns: []model.Transaction{
				debit(2024, time.March, 2, "SALARY ADVANCE RECOVERY", 5000, 40000),
			},
			wantCredits: nil,
		},
		{
			name: "multiple months produce one hit each",
			txns: []model.Transaction{
				credit(2024, time.January, 1, "SALARY", 50000, 50000),
				credit(2024, time.February, 1, "SALARY", 50000, 50000),
				credit(2024, time.March, 1, "SALARY", 50000, 50000),
			},
			wantCredits: []float64{50000, 50000, 50000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestClassifier(t).Classify(tt.txns, tt.employerHint)

			var got []float64
			for _, txn := range result.SalaryCredits {
				got = append(got, txn.Credit)
			}
			assert.Equal(t, tt.wantCredits, got)
		})
	}
}

func TestClassifier_EMIRecurrenceBoundary(t *testing.T) {
	// Same amount in exactly 3 distinct months crosses the recurrence
	// threshold; 2 months does not.
	threeMonths := []model.Transaction{
		debit(2024, time.January, 5, "EMI HDFC LOAN", 12000, 40000),
		debit(2024, time.February, 5, "EMI HDFC LOAN", 12000, 38000),
		debit(2024, time.March, 5, "EMI HDFC LOAN", 12000, 36000),
	}

	result := newTestClassifier(t).Classify(threeMonths, "")
	require.Len(t, result.EMIDebits, 3)
	assert.Equal(t, 1, result.DistinctEMISources())
	assert.InDelta(t, 12000, result.TotalMonthlyEMI(), 0.01)

	twoMonths := threeMonths[:2]
	result = newTestClassifier(t).Classify(twoMonths, "")
	// Below the threshold no group is confirmed, so graceful degradation
	// keeps the raw candidates instead of reporting zero EMI.
	require.Len(t, result.EMIDebits, 2)
}

func TestClassifier_EMIRecurrenceFiltersOneOffDebits(t *testing.T) {
	txns := []model.Transaction{
		debit(2024, time.January, 5, "EMI BAJAJ FINANCE", 9000, 40000),
		debit(2024, time.February, 5, "EMI BAJAJ FINANCE", 9000, 38000),
		debit(2024, time.March, 5, "EMI BAJAJ FINANCE", 9000, 36000),
		// One-off loan-tagged debit in a single month must not survive when
		// a confirmed recurring group exists.
		debit(2024, time.March, 20, "PERSONAL LOAN DISBURSAL CHARGES", 2500, 33500),
	}

	result := newTestClassifier(t).Classify(txns, "")
	require.Len(t, result.EMIDebits, 3)
	for _, txn := range result.EMIDebits {
		assert.InDelta(t, 9000, txn.Debit, 0.01)
	}
}

func TestClassifier_EMIMandateDebits(t *testing.T) {
	// Mandate-tagged debits qualify as EMI candidates even without an
	// explicit EMI or loan word in the narration.
	txns := []model.Transaction{
		debit(2024, time.January, 3, "NACH DR BAJAJ", 7500, 20000),
		debit(2024, time.February, 3, "NACH DR BAJAJ", 7500, 12500),
	}

	result := newTestClassifier(t).Classify(txns, "")
	require.Len(t, result.EMIDebits, 2)
}

func TestClassifier_EMIDeduplication(t *testing.T) {
	txns := []model.Transaction{
		debit(2024, time.January, 5, "EMI HDFC LOAN", 12000, 40000),
		debit(2024, time.January, 5, "EMI  HDFC   LOAN", 12000.4, 28000), // same day, same rounded amount, same normalized narration
		debit(2024, time.February, 5, "EMI HDFC LOAN", 12000, 26000),
		debit(2024, time.March, 5, "EMI HDFC LOAN", 12000, 14000),
	}

	result := newTestClassifier(t).Classify(txns, "")
	assert.Len(t, result.EMIDebits, 3)
}

func TestClassifier_BounceCounters(t *testing.T) {
	tests := []struct {
		name             string
		narration        string
		wantBounce       int
		wantDishonor     int
		wantInsufficient int
	}{
		{
			name:         "cheque return increments dishonor",
			narration:    "CHQ RET INWARD",
			wantDishonor: 1,
		},
		{
			name:             "insufficient funds increments its counter",
			narration:        "ECS RTN CHG INSUFFICIENT FUNDS",
			wantBounce:       1, // RTN also matches the generic sub-pattern
			wantInsufficient: 1,
		},
		{
			name:       "generic bounce",
			narration:  "PAYMENT FAILED REVERSAL",
			wantBounce: 1,
		},
		{
			name:         "nach return increments dishonor and generic",
			narration:    "NACH RETURN CHARGES",
			wantBounce:   1,
			wantDishonor: 1,
		},
		{
			name:      "clean narration counts nothing",
			narration: "POS AMAZON PAY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := []model.Transaction{debit(2024, time.January, 10, tt.narration, 500, 10000)}
			result := newTestClassifier(t).Classify(txns, "")

			assert.Equal(t, tt.wantBounce, result.BounceCount, "bounce")
			assert.Equal(t, tt.wantDishonor, result.DishonorCount, "dishonor")
			assert.Equal(t, tt.wantInsufficient, result.InsufficientFundsCount, "insufficient")
		})
	}
}

func TestClassifier_OuterBounceMatchNeverDropped(t *testing.T) {
	// "PENAL" satisfies the outer vocabulary; even if no sub-pattern
	// matched, the generic counter must move.
	txns := []model.Transaction{debit(2024, time.January, 9, "PENAL CHARGES", 250, 5000)}
	result := newTestClassifier(t).Classify(txns, "")
	assert.GreaterOrEqual(t, result.BounceCount, 1)
}

func TestClassifier_Determinism(t *testing.T) {
	txns := []model.Transaction{
		credit(2024, time.January, 1, "SALARY ACME", 50000, 50000),
		debit(2024, time.January, 5, "EMI HDFC", 12000, 38000),
		debit(2024, time.February, 5, "EMI HDFC", 12000, 26000),
		debit(2024, time.March, 5, "EMI HDFC", 12000, 14000),
		debit(2024, time.March, 8, "ECS RETURN INSUFFICIENT FUNDS", 350, 13650),
	}

	classifier := newTestClassifier(t)
	first := classifier.Classify(txns, "Acme Industries")
	second := classifier.Classify(txns, "Acme Industries")
	assert.Equal(t, first, second)
}

func TestClassifier_ExcludesUndatedRows(t *testing.T) {
	txns := []model.Transaction{
		{Narration: "SALARY", Credit: 50000, Balance: 50000}, // zero date: malformed row
		credit(2024, time.January, 1, "SALARY", 48000, 48000),
	}

	result := newTestClassifier(t).Classify(txns, "")
	require.Len(t, result.SalaryCredits, 1)
	assert.InDelta(t, 48000, result.SalaryCredits[0].Credit, 0.01)
}

func TestResult_ConsecutiveSalaryMonths(t *testing.T) {
	tests := []struct {
		name   string
		months []time.Month
		want   int
	}{
		{name: "empty", months: nil, want: 0},
		{name: "single month", months: []time.Month{time.March}, want: 1},
		{name: "three consecutive", months: []time.Month{time.January, time.February, time.March}, want: 3},
		{name: "gap resets the run", months: []time.Month{time.January, time.February, time.May, time.June, time.July}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result Result
			for _, m := range tt.months {
				result.SalaryCredits = append(result.SalaryCredits, credit(2024, m, 1, "SALARY", 50000, 50000))
			}
			assert.Equal(t, tt.want, result.ConsecutiveSalaryMonths())
		})
	}
}

func TestResult_TotalMonthlyEMI(t *testing.T) {
	result := Result{
		EMIDebits: []model.Transaction{
			debit(2024, time.January, 5, "EMI A", 12000, 0),
			debit(2024, time.February, 5, "EMI A", 12000, 0),
			debit(2024, time.January, 7, "EMI B", 8000, 0),
			debit(2024, time.February, 7, "EMI B", 8000, 0),
		},
	}

	// Two distinct obligations; each counts once per month.
	assert.Equal(t, 2, result.DistinctEMISources())
	assert.InDelta(t, 20000, result.TotalMonthlyEMI(), 0.01)
}

func TestResult_PaymentIncidents(t *testing.T) {
	result := Result{BounceCount: 2, DishonorCount: 1, InsufficientFundsCount: 1}
	assert.Equal(t, 4, result.PaymentIncidents())
}
