// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate(), "shipping defaults must validate")

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10, cfg.Session.Steps)
	assert.Equal(t, []float64{0.30, 0.55, 0.75, 0.95}, cfg.Session.WatchFractions)
	assert.Equal(t, 5*time.Second, cfg.Analytics.MinDrainDelay)
}

func TestDefaultsAreStable(t *testing.T) {
	// Two independent viper instances must produce identical configs;
	// a diff here means a default leaked mutable shared state.
	a := NewDefaultConfig()
	b := NewDefaultConfig()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("default configs differ (-a +b):\n%s", diff)
	}
}

func TestNewConfigFromViperAppliesOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("session.steps", 3)
	v.Set("target.base_url", "http://localhost:8888")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Session.Steps)
	assert.Equal(t, "http://localhost:8888", cfg.Target.BaseURL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"missing base url":        func(c *Config) { c.Target.BaseURL = "" },
		"schemeless base url":     func(c *Config) { c.Target.BaseURL = "hogflix.example" },
		"zero steps":              func(c *Config) { c.Session.Steps = 0 },
		"watch fraction over 1":   func(c *Config) { c.Session.WatchFractions = []float64{1.5} },
		"negative rage prob":      func(c *Config) { c.Session.RageClickProbability = -0.1 },
		"pause prob over 1":       func(c *Config) { c.Session.PauseProbability = 1.1 },
		"negative drain delay":    func(c *Config) { c.Analytics.MinDrainDelay = -time.Second },
		"move step bounds":        func(c *Config) { c.Humanoid.MaxMoveSteps = 1 },
		"funnel rate over 1":      func(c *Config) { r := c.Funnel.Rates["control"]; r.MessageSent = 2; c.Funnel.Rates["control"] = r },
		"control not in variants": func(c *Config) { c.Funnel.Control = "phantom" },
		"bad experiment end":      func(c *Config) { c.Funnel.ExperimentEnd = "next tuesday" },
		"funnel concurrency":      func(c *Config) { c.Funnel.Concurrency = 0 },
		"zero launch rate":        func(c *Config) { c.Funnel.LaunchRate = 0 },
		"negative launch rate":    func(c *Config) { c.Funnel.LaunchRate = -1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFunnelValidateRequiresRatesPerVariant(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Funnel.Variants = append(cfg.Funnel.Variants, "unrated")
	assert.Error(t, cfg.Funnel.Validate())
}

func TestExperimentEndTime(t *testing.T) {
	var fc FunnelConfig
	assert.True(t, fc.ExperimentEndTime().IsZero())

	fc.ExperimentEnd = "2026-09-15T00:00:00Z"
	end := fc.ExperimentEndTime()
	require.False(t, end.IsZero())
	assert.Equal(t, 2026, end.Year())
}

func TestOracleKeyEnvBinding(t *testing.T) {
	t.Setenv("HOGSIM_ORACLE_API_KEY", "test-key-123")

	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "test-key-123", cfg.Oracle.APIKey)
}
