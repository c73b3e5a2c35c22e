package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/credlens/credlens/internal/model"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "₹0.00"},
		{500, "₹500.00"},
		{1000, "₹1,000.00"},
		{50000, "₹50,000.00"},
		{100000, "₹1,00,000.00"},
		{12345678.9, "₹1,23,45,678.90"},
		{-2500.5, "-₹2,500.50"},
		// The fraction carries into the rupee part instead of producing a
		// three-digit paise field.
		{34999.999999999996, "₹35,000.00"},
		{0.999, "₹1.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.value), "value %v", tt.value)
	}
}

func TestGroupIndian(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7", "7"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "1,23,456"},
		{"12345678", "1,23,45,678"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, groupIndian(tt.in), "digits %s", tt.in)
	}
}

func TestFormatReport(t *testing.T) {
	f := NewCLIFormatter()

	report := &model.AnalysisReport{
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Applicant:   "asha",
		FOIR: model.FOIRResult{
			Percentage:          30,
			Status:              model.FOIRLow,
			NetMonthlyIncome:    50000,
			MonthlyEMI:          15000,
			AvailableIncome:     35000,
			DebtServiceCoverage: 3.33,
			IncomeSource:        model.SourceSalarySlip,
		},
		CIBIL: model.CIBILEstimate{
			Score:           789,
			Band:            "750-900",
			RiskLevel:       model.RiskLow,
			PositiveFactors: []string{"no bounce or dishonor incidents in the statement period"},
		},
		Balance:      model.BalanceSummary{AverageBalance: 72000, MinimumBalance: 65000},
		SalaryMonths: 6,
		Warnings:     []string{"income mismatch detected"},
		Confidence:   0.85,
	}

	out := f.FormatReport(report)

	assert.Contains(t, out, "asha")
	assert.Contains(t, out, "30.00%")
	assert.Contains(t, out, "789")
	assert.Contains(t, out, "₹50,000.00")
	assert.Contains(t, out, "income mismatch detected")
	assert.Contains(t, out, "85%")
}

func TestFormatReport_Nil(t *testing.T) {
	out := NewCLIFormatter().FormatReport(nil)
	assert.Contains(t, out, "No report available")
}

func TestFormatReport_NoIncomeEvidence(t *testing.T) {
	f := NewCLIFormatter()

	report := &model.AnalysisReport{
		GeneratedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		FOIR: model.FOIRResult{
			Status:              model.FOIRLow,
			IncomeSource:        model.SourceNone,
			DebtServiceCoverage: model.DSCRSentinel,
		},
	}

	out := f.FormatReport(report)
	assert.Contains(t, out, "No income evidence available")
	assert.NotContains(t, out, "Debt service coverage")
}
