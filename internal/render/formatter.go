// Package render formats analysis reports for terminal display.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/credlens/credlens/internal/model"
)

// CLIFormatter renders an AnalysisReport as styled terminal output.
type CLIFormatter struct {
	styles *Styles
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{
		styles: NewStyles(),
	}
}

// FormatReport creates the full terminal rendering of a report.
func (f *CLIFormatter) FormatReport(report *model.AnalysisReport) string {
	if report == nil {
		return f.styles.Error.Render("No report available")
	}

	sections := []string{
		f.formatHeader(report),
		f.formatFOIR(&report.FOIR),
		f.formatCIBIL(&report.CIBIL),
		f.formatBalances(report),
	}

	if len(report.Warnings) > 0 {
		sections = append(sections, f.formatWarnings(report.Warnings))
	}
	sections = append(sections, f.formatConfidence(report.Confidence))

	return strings.Join(sections, "\n\n")
}

func (f *CLIFormatter) formatHeader(report *model.AnalysisReport) string {
	title := "Credit Risk Analysis"
	if report.Applicant != "" {
		title = fmt.Sprintf("Credit Risk Analysis: %s", report.Applicant)
	}
	generated := f.styles.Subtle.Render(
		fmt.Sprintf("Generated %s", report.GeneratedAt.Format("2006-01-02 15:04")))
	return f.styles.Title.Render(title) + "\n" + generated
}

func (f *CLIFormatter) formatFOIR(result *model.FOIRResult) string {
	status := f.statusStyle(result.Status).Render(string(result.Status))

	lines := []string{
		f.styles.Subtitle.Render("Fixed Obligation to Income Ratio"),
		fmt.Sprintf("FOIR: %s  %s",
			f.styles.Score.Render(fmt.Sprintf("%.2f%%", result.Percentage)), status),
		fmt.Sprintf("Net monthly income: %s (source: %s)",
			formatAmount(result.NetMonthlyIncome), result.IncomeSource),
		fmt.Sprintf("Monthly EMI obligation: %s", formatAmount(result.MonthlyEMI)),
		fmt.Sprintf("Available income: %s", formatAmount(result.AvailableIncome)),
	}

	if result.IncomeSource == model.SourceNone {
		lines = append(lines, f.styles.Warning.Render(
			"No income evidence available; the ratio is not usable for decisions"))
	} else if result.DebtServiceCoverage < model.DSCRSentinel {
		lines = append(lines, fmt.Sprintf("Debt service coverage: %.2fx", result.DebtServiceCoverage))
	}

	return f.styles.Box.Render(strings.Join(lines, "\n"))
}

func (f *CLIFormatter) formatCIBIL(estimate *model.CIBILEstimate) string {
	risk := f.riskStyle(estimate.RiskLevel).Render(string(estimate.RiskLevel))

	lines := []string{
		f.styles.Subtitle.Render("Estimated CIBIL Score"),
		fmt.Sprintf("Score: %s  (band %s, risk %s)",
			f.styles.Score.Render(fmt.Sprintf("%d", estimate.Score)), estimate.Band, risk),
		fmt.Sprintf("Payment history %.2f · Utilization %.2f · Stability %.2f · Credit mix %.2f",
			estimate.Components.PaymentHistory,
			estimate.Components.CreditUtilization,
			estimate.Components.IncomeStability,
			estimate.Components.CreditMix),
	}

	for _, factor := range estimate.PositiveFactors {
		lines = append(lines, f.styles.Success.Render("  + "+factor))
	}
	for _, factor := range estimate.NegativeFactors {
		lines = append(lines, f.styles.Warning.Render("  - "+factor))
	}
	for _, indicator := range estimate.RiskIndicators {
		lines = append(lines, f.styles.Error.Render("  ! "+indicator))
	}

	return f.styles.Box.Render(strings.Join(lines, "\n"))
}

func (f *CLIFormatter) formatBalances(report *model.AnalysisReport) string {
	lines := []string{
		f.styles.Subtitle.Render("Statement Summary"),
		fmt.Sprintf("Average balance (day-weighted): %s", formatAmount(report.Balance.AverageBalance)),
		fmt.Sprintf("Minimum balance: %s", formatAmount(report.Balance.MinimumBalance)),
		fmt.Sprintf("Consecutive salary months: %d", report.SalaryMonths),
		fmt.Sprintf("Active loan obligations: %d", report.ActiveLoanSources),
		fmt.Sprintf("Bounce/dishonor incidents: %d", report.BounceIncidents),
	}
	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatWarnings(warnings []string) string {
	lines := []string{f.styles.Subtitle.Render("Cross-Validation Warnings")}
	for _, w := range warnings {
		lines = append(lines, f.styles.Warning.Render("  ⚠ "+w))
	}
	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatConfidence(confidence float64) string {
	style := f.styles.Success
	switch {
	case confidence < 0.5:
		style = f.styles.Error
	case confidence < 0.75:
		style = f.styles.Warning
	}
	return fmt.Sprintf("Extraction confidence: %s",
		style.Render(fmt.Sprintf("%.0f%%", confidence*100)))
}

func (f *CLIFormatter) statusStyle(status model.FOIRStatus) lipgloss.Style {
	switch status {
	case model.FOIRLow:
		return f.styles.Low
	case model.FOIRMedium:
		return f.styles.Medium
	case model.FOIRHigh:
		return f.styles.High
	default:
		return f.styles.Critical
	}
}

func (f *CLIFormatter) riskStyle(risk model.RiskLevel) lipgloss.Style {
	switch risk {
	case model.RiskLow:
		return f.styles.Low
	case model.RiskMediumLow, model.RiskMedium:
		return f.styles.Medium
	case model.RiskMediumHigh:
		return f.styles.High
	default:
		return f.styles.Critical
	}
}

// formatAmount renders a monetary value with thousands grouping in the
// Indian style (lakh/crore). The value is rounded to whole paise before
// splitting so the fraction carries into the rupee part.
func formatAmount(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}

	paise := int64(math.Round(v * 100))
	grouped := groupIndian(fmt.Sprintf("%d", paise/100))

	out := fmt.Sprintf("₹%s.%02d", grouped, paise%100)
	if negative {
		out = "-" + out
	}
	return out
}

// groupIndian inserts separators after the first three digits from the
// right, then every two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
