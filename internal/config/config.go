// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Target    TargetConfig    `mapstructure:"target" yaml:"target"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	Humanoid  HumanoidConfig  `mapstructure:"humanoid" yaml:"humanoid"`
	Oracle    OracleConfig    `mapstructure:"oracle" yaml:"oracle"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Funnel    FunnelConfig    `mapstructure:"funnel" yaml:"funnel"`
	Analytics AnalyticsConfig `mapstructure:"analytics" yaml:"analytics"`
	Signup    SignupConfig    `mapstructure:"signup" yaml:"signup"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// TargetConfig describes the HogFlix deployment the simulator drives. Only
// the entry points are configured; everything past them is reached by
// classifying whatever page the app serves, not by constructing URLs.
type TargetConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	SignupPath string `mapstructure:"signup_path" yaml:"signup_path"`
}

// BrowserConfig holds settings for the headless browser instances.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	DisableCache      bool          `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Debug             bool          `mapstructure:"debug" yaml:"debug"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ElementTimeout    time.Duration `mapstructure:"element_timeout" yaml:"element_timeout"`
}

// HumanoidConfig contains the tunable parameters for the human-like input
// simulation: mouse movement physics, typing cadence, and idle jitter.
type HumanoidConfig struct {
	// Enabled toggles the motion simulation. When false the pointer
	// teleports to its targets, which is faster but trivially detectable.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Fitts's Law coefficients (milliseconds): MT = A + B*log2(1 + D/W).
	FittsA float64 `mapstructure:"fitts_a" yaml:"fitts_a"`
	FittsB float64 `mapstructure:"fitts_b" yaml:"fitts_b"`

	// Trajectory step bounds for a single pointer move.
	MinMoveSteps int `mapstructure:"min_move_steps" yaml:"min_move_steps"`
	MaxMoveSteps int `mapstructure:"max_move_steps" yaml:"max_move_steps"`

	// Noise applied to the cursor path.
	PerlinAmplitude  float64 `mapstructure:"perlin_amplitude" yaml:"perlin_amplitude"`
	GaussianStrength float64 `mapstructure:"gaussian_strength" yaml:"gaussian_strength"`

	// Click hold window in milliseconds.
	ClickHoldMinMs int `mapstructure:"click_hold_min_ms" yaml:"click_hold_min_ms"`
	ClickHoldMaxMs int `mapstructure:"click_hold_max_ms" yaml:"click_hold_max_ms"`

	// Inter-key typing delay (normal distribution, milliseconds).
	KeyDelayMeanMs   float64 `mapstructure:"key_delay_mean_ms" yaml:"key_delay_mean_ms"`
	KeyDelayStdDevMs float64 `mapstructure:"key_delay_stddev_ms" yaml:"key_delay_stddev_ms"`
	KeyDelayMinMs    float64 `mapstructure:"key_delay_min_ms" yaml:"key_delay_min_ms"`
	KeyDelayMaxMs    float64 `mapstructure:"key_delay_max_ms" yaml:"key_delay_max_ms"`
}

// OracleConfig configures the optional LLM decision oracle. An empty APIKey
// disables the oracle entirely; the navigator then falls back to uniform
// random choice.
type OracleConfig struct {
	APIKey  string        `mapstructure:"api_key" yaml:"-"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SessionConfig tunes the long-running journey session.
type SessionConfig struct {
	Steps          int           `mapstructure:"steps" yaml:"steps"`
	SettleInterval time.Duration `mapstructure:"settle_interval" yaml:"settle_interval"`
	// RearmEvery re-asserts the in-page analytics bootstrap every N steps,
	// because SPA full navigations can reset the capture agent.
	RearmEvery int `mapstructure:"rearm_every" yaml:"rearm_every"`

	// Demo-tuning constants. These are deliberate biases for the analytics
	// demo narrative, not a model of real users. Keep them overridable.
	RageClickProbability   float64       `mapstructure:"rage_click_probability" yaml:"rage_click_probability"`
	PauseProbability       float64       `mapstructure:"pause_probability" yaml:"pause_probability"`
	WatchFractions         []float64     `mapstructure:"watch_fractions" yaml:"watch_fractions"`
	AssumedContentLength   time.Duration `mapstructure:"assumed_content_length" yaml:"assumed_content_length"`
	WatchPollInterval      time.Duration `mapstructure:"watch_poll_interval" yaml:"watch_poll_interval"`
	PlaybackStartTimeout   time.Duration `mapstructure:"playback_start_timeout" yaml:"playback_start_timeout"`
	MaxDashboardCandidates int           `mapstructure:"max_dashboard_candidates" yaml:"max_dashboard_candidates"`
}

// VariantRates holds the per-variant Bernoulli probabilities used to produce
// intentionally biased funnel outcomes.
type VariantRates struct {
	MessageSent      float64 `mapstructure:"message_sent" yaml:"message_sent"`
	Feedback         float64 `mapstructure:"feedback" yaml:"feedback"`
	FeedbackPositive float64 `mapstructure:"feedback_positive" yaml:"feedback_positive"`
	VideoClicked     float64 `mapstructure:"video_clicked" yaml:"video_clicked"`
}

// FunnelConfig configures the multi-session experiment funnel generator.
type FunnelConfig struct {
	Sessions    int                     `mapstructure:"sessions" yaml:"sessions"`
	Concurrency int                     `mapstructure:"concurrency" yaml:"concurrency"`
	LaunchRate  float64                 `mapstructure:"launch_rate" yaml:"launch_rate"`
	Variants    []string                `mapstructure:"variants" yaml:"variants"`
	Control     string                  `mapstructure:"control" yaml:"control"`
	Rates       map[string]VariantRates `mapstructure:"rates" yaml:"rates"`
	// ExperimentEnd stops the generator from producing biased data past the
	// experiment's intended end. RFC3339; empty means no expiry.
	ExperimentEnd string `mapstructure:"experiment_end" yaml:"experiment_end"`
}

// AnalyticsConfig describes the ingestion endpoint hogsim coordinates with.
type AnalyticsConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey   string `mapstructure:"api_key" yaml:"-"`
	// IngestPathPattern is matched against outgoing request URLs when waiting
	// for the in-page capture agent to flush its final batch.
	IngestPathPattern string        `mapstructure:"ingest_path_pattern" yaml:"ingest_path_pattern"`
	MinDrainDelay     time.Duration `mapstructure:"min_drain_delay" yaml:"min_drain_delay"`
	FlushTimeout      time.Duration `mapstructure:"flush_timeout" yaml:"flush_timeout"`
}

// SignupConfig tunes the signup-only traffic generator.
type SignupConfig struct {
	Sessions int `mapstructure:"sessions" yaml:"sessions"`
}

// SetDefaults initializes default values for various configuration parameters.
// Every default is chosen so the tool runs useful work with zero configuration.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "hogsim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Target --
	v.SetDefault("target.base_url", "https://hogflix-demo.netlify.app")
	v.SetDefault("target.signup_path", "/signup")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.debug", false)
	v.SetDefault("browser.navigation_timeout", "45s")
	v.SetDefault("browser.element_timeout", "8s")

	// -- Humanoid --
	v.SetDefault("humanoid.enabled", true)
	v.SetDefault("humanoid.fitts_a", 120.0)
	v.SetDefault("humanoid.fitts_b", 140.0)
	v.SetDefault("humanoid.min_move_steps", 20)
	v.SetDefault("humanoid.max_move_steps", 45)
	v.SetDefault("humanoid.perlin_amplitude", 2.5)
	v.SetDefault("humanoid.gaussian_strength", 0.6)
	v.SetDefault("humanoid.click_hold_min_ms", 45)
	v.SetDefault("humanoid.click_hold_max_ms", 140)
	v.SetDefault("humanoid.key_delay_mean_ms", 140.0)
	v.SetDefault("humanoid.key_delay_stddev_ms", 55.0)
	v.SetDefault("humanoid.key_delay_min_ms", 50.0)
	v.SetDefault("humanoid.key_delay_max_ms", 300.0)

	// -- Oracle --
	v.SetDefault("oracle.model", "gemini-2.5-flash")
	v.SetDefault("oracle.timeout", "10s")

	// -- Session --
	v.SetDefault("session.steps", 10)
	v.SetDefault("session.settle_interval", "2s")
	v.SetDefault("session.rearm_every", 3)
	v.SetDefault("session.rage_click_probability", 0.08)
	v.SetDefault("session.pause_probability", 0.05)
	v.SetDefault("session.watch_fractions", []float64{0.30, 0.55, 0.75, 0.95})
	v.SetDefault("session.assumed_content_length", "60s")
	v.SetDefault("session.watch_poll_interval", "2s")
	v.SetDefault("session.playback_start_timeout", "15s")
	v.SetDefault("session.max_dashboard_candidates", 10)

	// -- Funnel --
	v.SetDefault("funnel.sessions", 50)
	v.SetDefault("funnel.concurrency", 1)
	v.SetDefault("funnel.launch_rate", 5.0)
	v.SetDefault("funnel.variants", []string{"control", "flixbuddy-proactive"})
	v.SetDefault("funnel.control", "control")
	// The variant is meant to win. These rates produce the predetermined
	// demo narrative, by construction.
	v.SetDefault("funnel.rates.control.message_sent", 0.40)
	v.SetDefault("funnel.rates.control.feedback", 0.25)
	v.SetDefault("funnel.rates.control.feedback_positive", 0.50)
	v.SetDefault("funnel.rates.control.video_clicked", 0.20)
	v.SetDefault("funnel.rates.flixbuddy-proactive.message_sent", 0.60)
	v.SetDefault("funnel.rates.flixbuddy-proactive.feedback", 0.40)
	v.SetDefault("funnel.rates.flixbuddy-proactive.feedback_positive", 0.75)
	v.SetDefault("funnel.rates.flixbuddy-proactive.video_clicked", 0.45)
	v.SetDefault("funnel.experiment_end", "")

	// -- Analytics --
	v.SetDefault("analytics.endpoint", "https://us.i.posthog.com")
	v.SetDefault("analytics.ingest_path_pattern", "/e/")
	v.SetDefault("analytics.min_drain_delay", "5s")
	v.SetDefault("analytics.flush_timeout", "15s")

	// -- Signup --
	v.SetDefault("signup.sessions", 5)
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for sensitive data.
	v.BindEnv("oracle.api_key", "HOGSIM_ORACLE_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("analytics.api_key", "HOGSIM_ANALYTICS_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Target.BaseURL == "" {
		return fmt.Errorf("target.base_url is a required configuration field")
	}
	if !strings.HasPrefix(c.Target.BaseURL, "http://") && !strings.HasPrefix(c.Target.BaseURL, "https://") {
		return fmt.Errorf("target.base_url must include an http(s) scheme")
	}
	if c.Session.Steps <= 0 {
		return fmt.Errorf("session.steps must be a positive integer")
	}
	for _, f := range c.Session.WatchFractions {
		if f <= 0 || f > 1 {
			return fmt.Errorf("session.watch_fractions entries must be in (0,1], got %v", f)
		}
	}
	if p := c.Session.RageClickProbability; p < 0 || p > 1 {
		return fmt.Errorf("session.rage_click_probability must be in [0,1]")
	}
	if p := c.Session.PauseProbability; p < 0 || p > 1 {
		return fmt.Errorf("session.pause_probability must be in [0,1]")
	}
	if err := c.Funnel.Validate(); err != nil {
		return fmt.Errorf("funnel configuration invalid: %w", err)
	}
	if c.Analytics.MinDrainDelay < 0 {
		return fmt.Errorf("analytics.min_drain_delay must not be negative")
	}
	if c.Humanoid.MinMoveSteps < 2 || c.Humanoid.MaxMoveSteps < c.Humanoid.MinMoveSteps {
		return fmt.Errorf("humanoid move step bounds invalid: min=%d max=%d",
			c.Humanoid.MinMoveSteps, c.Humanoid.MaxMoveSteps)
	}
	return nil
}

// Validate checks the funnel settings.
func (f *FunnelConfig) Validate() error {
	if f.Sessions < 0 {
		return fmt.Errorf("sessions must not be negative")
	}
	if f.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	// A non-positive launch rate would park every session in limiter.Wait
	// forever.
	if f.LaunchRate <= 0 {
		return fmt.Errorf("launch_rate must be positive, got %v", f.LaunchRate)
	}
	if len(f.Variants) == 0 {
		return fmt.Errorf("at least one variant is required")
	}
	control := false
	for _, name := range f.Variants {
		if name == f.Control {
			control = true
		}
		rates, ok := f.Rates[name]
		if !ok {
			return fmt.Errorf("variant %q has no engagement rates configured", name)
		}
		for field, p := range map[string]float64{
			"message_sent":      rates.MessageSent,
			"feedback":          rates.Feedback,
			"feedback_positive": rates.FeedbackPositive,
			"video_clicked":     rates.VideoClicked,
		} {
			if p < 0 || p > 1 {
				return fmt.Errorf("variant %q rate %s must be in [0,1], got %v", name, field, p)
			}
		}
	}
	if !control {
		return fmt.Errorf("control variant %q is not in the variant list", f.Control)
	}
	if f.ExperimentEnd != "" {
		if _, err := time.Parse(time.RFC3339, f.ExperimentEnd); err != nil {
			return fmt.Errorf("experiment_end must be RFC3339: %w", err)
		}
	}
	return nil
}

// ExperimentEndTime parses the configured end timestamp. The zero time means
// no expiry is configured.
func (f *FunnelConfig) ExperimentEndTime() time.Time {
	if f.ExperimentEnd == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, f.ExperimentEnd)
	if err != nil {
		return time.Time{}
	}
	return t
}
