package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credlens/credlens/internal/common"
)

func validConfig() Config {
	return Config{
		SalaryBankMismatch:    0.15,
		MonthlyAnnualMismatch: 0.25,
		ITRForm16Mismatch:     0.20,
		FlatDeductionRate:     0.18,
		EMIRecurrenceMonths:   3,
		WeightPayment:         0.35,
		WeightUtilization:     0.30,
		WeightStability:       0.25,
		WeightMix:             0.10,
		DatabasePath:          "/tmp/credlens.db",
	}
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.15, cfg.SalaryBankMismatch, 0.001)
	assert.InDelta(t, 0.25, cfg.MonthlyAnnualMismatch, 0.001)
	assert.InDelta(t, 0.20, cfg.ITRForm16Mismatch, 0.001)
	assert.InDelta(t, 0.18, cfg.FlatDeductionRate, 0.001)
	assert.Equal(t, 3, cfg.EMIRecurrenceMonths)
	assert.NotContains(t, cfg.DatabasePath, "~")
}

func TestLoad_InvalidOverrideRejected(t *testing.T) {
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)

	viper.Set("cibil.weight_payment", 0.9)

	_, err := Load()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
			valid:  true,
		},
		{
			name:   "zero mismatch threshold",
			mutate: func(c *Config) { c.SalaryBankMismatch = 0 },
		},
		{
			name:   "threshold at or above one",
			mutate: func(c *Config) { c.MonthlyAnnualMismatch = 1.0 },
		},
		{
			name:   "negative deduction rate",
			mutate: func(c *Config) { c.FlatDeductionRate = -0.1 },
		},
		{
			name:   "full deduction rate",
			mutate: func(c *Config) { c.FlatDeductionRate = 1.0 },
		},
		{
			name:   "zero deduction rate is allowed",
			mutate: func(c *Config) { c.FlatDeductionRate = 0 },
			valid:  true,
		},
		{
			name:   "recurrence below one",
			mutate: func(c *Config) { c.EMIRecurrenceMonths = 0 },
		},
		{
			name:   "weights not summing to one",
			mutate: func(c *Config) { c.WeightMix = 0.2 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "absolute path unchanged", in: "/var/lib/credlens.db", want: "/var/lib/credlens.db"},
		{name: "tilde prefix", in: "~/data/credlens.db", want: filepath.Join(home, "data/credlens.db")},
		{name: "bare tilde", in: "~", want: home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestExpandPath_EnvironmentVariables(t *testing.T) {
	t.Setenv("CREDLENS_TEST_DIR", "/opt/credlens")
	assert.Equal(t, "/opt/credlens/db", ExpandPath("$CREDLENS_TEST_DIR/db"))
}
