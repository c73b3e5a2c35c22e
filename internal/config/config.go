// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"math"

	"github.com/spf13/viper"

	"github.com/credlens/credlens/internal/common"
)

// Config holds every tunable heuristic of the scoring engine. The defaults
// are hand-tuned; recalibrating them against real outcome data needs no code
// change.
type Config struct {
	// SalaryBankMismatch is the relative threshold above which salary-slip
	// and bank-detected net income are treated as conflicting.
	SalaryBankMismatch float64
	// MonthlyAnnualMismatch is the threshold for tax-return monthly x12 vs
	// annual income cross-validation.
	MonthlyAnnualMismatch float64
	// ITRForm16Mismatch is the threshold for ITR vs Form-16 income
	// cross-validation.
	ITRForm16Mismatch float64
	// FlatDeductionRate approximates net from gross income when only the
	// gross figure is known.
	FlatDeductionRate float64
	// EMIRecurrenceMonths is the distinct-month count that promotes an EMI
	// amount group to confirmed-recurring.
	EMIRecurrenceMonths int
	// CIBIL factor weights; they must sum to 1.
	WeightPayment     float64
	WeightUtilization float64
	WeightStability   float64
	WeightMix         float64
	// DatabasePath is the SQLite report store location.
	DatabasePath string
}

// SetDefaults registers the default values with viper. Call once before
// Load.
func SetDefaults() {
	viper.SetDefault("thresholds.salary_bank_mismatch", 0.15)
	viper.SetDefault("thresholds.monthly_annual_mismatch", 0.25)
	viper.SetDefault("thresholds.itr_form16_mismatch", 0.20)
	viper.SetDefault("thresholds.flat_deduction_rate", 0.18)
	viper.SetDefault("classifier.recurrence_months", 3)
	viper.SetDefault("cibil.weight_payment", 0.35)
	viper.SetDefault("cibil.weight_utilization", 0.30)
	viper.SetDefault("cibil.weight_stability", 0.25)
	viper.SetDefault("cibil.weight_mix", 0.10)
	viper.SetDefault("database.path", "~/.local/share/credlens/credlens.db")
}

// Load reads the engine configuration from viper and validates it.
func Load() (Config, error) {
	cfg := Config{
		SalaryBankMismatch:    viper.GetFloat64("thresholds.salary_bank_mismatch"),
		MonthlyAnnualMismatch: viper.GetFloat64("thresholds.monthly_annual_mismatch"),
		ITRForm16Mismatch:     viper.GetFloat64("thresholds.itr_form16_mismatch"),
		FlatDeductionRate:     viper.GetFloat64("thresholds.flat_deduction_rate"),
		EMIRecurrenceMonths:   viper.GetInt("classifier.recurrence_months"),
		WeightPayment:         viper.GetFloat64("cibil.weight_payment"),
		WeightUtilization:     viper.GetFloat64("cibil.weight_utilization"),
		WeightStability:       viper.GetFloat64("cibil.weight_stability"),
		WeightMix:             viper.GetFloat64("cibil.weight_mix"),
		DatabasePath:          ExpandPath(viper.GetString("database.path")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot score with.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"thresholds.salary_bank_mismatch":    c.SalaryBankMismatch,
		"thresholds.monthly_annual_mismatch": c.MonthlyAnnualMismatch,
		"thresholds.itr_form16_mismatch":     c.ITRForm16Mismatch,
	} {
		if v <= 0 || v >= 1 {
			return fmt.Errorf("%w: %s must be in (0, 1), got %v", common.ErrInvalidConfig, name, v)
		}
	}

	if c.FlatDeductionRate < 0 || c.FlatDeductionRate >= 1 {
		return fmt.Errorf("%w: thresholds.flat_deduction_rate must be in [0, 1), got %v",
			common.ErrInvalidConfig, c.FlatDeductionRate)
	}

	if c.EMIRecurrenceMonths < 1 {
		return fmt.Errorf("%w: classifier.recurrence_months must be at least 1, got %d",
			common.ErrInvalidConfig, c.EMIRecurrenceMonths)
	}

	total := c.WeightPayment + c.WeightUtilization + c.WeightStability + c.WeightMix
	if math.Abs(total-1.0) > 1e-9 {
		return fmt.Errorf("%w: cibil weights must sum to 1, got %v", common.ErrInvalidConfig, total)
	}

	return nil
}
