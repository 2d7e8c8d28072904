// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/codr1/Courtside/internal/matcher"
	"github.com/codr1/Courtside/internal/pricing"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type PricingSection struct {
	PeakHours     []int   `yaml:"peak_hours"`
	PeakHourFee   float64 `yaml:"peak_hour_fee"`
	MemberRate    float64 `yaml:"member_rate"`
	NonMemberRate float64 `yaml:"non_member_rate"`
	OpeningHour   int     `yaml:"opening_hour"`
	ClosingHour   int     `yaml:"closing_hour"`
}

type MatchingSection struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	TokenThreshold      float64 `yaml:"token_threshold"`
	MinFragmentLength   int     `yaml:"min_fragment_length"`
}

type PaymentsSection struct {
	DueDaysAfterUsage      int     `yaml:"due_days_after_usage"`
	NotesMaxLength         int     `yaml:"notes_max_length"`
	AppServiceFeeRate      float64 `yaml:"app_service_fee_rate"`
	ReconcileLookbackHours int     `yaml:"reconcile_lookback_hours"`
}

type SchedulerSection struct {
	OrphanCleanupCron string `yaml:"orphan_cleanup_cron"`
	OverdueSweepCron  string `yaml:"overdue_sweep_cron"`
}

// RateLimitSection throttles payment submissions. Zero values use the
// limiter defaults.
type RateLimitSection struct {
	Disabled        bool `yaml:"disabled"`
	CooldownSeconds int  `yaml:"cooldown_seconds"`
	PerUserPerHour  int  `yaml:"per_user_per_hour"`
	PerIPPerHour    int  `yaml:"per_ip_per_hour"`
	TrustProxy      bool `yaml:"trust_proxy"`
}

type NotificationsSection struct {
	Exchange string `yaml:"exchange"`
	AMQPURL  string `yaml:"-"` // Loaded from environment
}

type EmailSection struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database      DatabaseConfig       `yaml:"database"`
	Pricing       PricingSection       `yaml:"pricing"`
	Matching      MatchingSection      `yaml:"matching"`
	Payments      PaymentsSection      `yaml:"payments"`
	Scheduler     SchedulerSection     `yaml:"scheduler"`
	RateLimit     RateLimitSection     `yaml:"rate_limit"`
	Notifications NotificationsSection `yaml:"notifications"`
	Email         EmailSection         `yaml:"email"`

	Features struct {
		EnableDebug bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.Notifications.AMQPURL = os.Getenv("AMQP_URL")
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and fills defaults for every section the
// file leaves out. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := pricing.DefaultConfig()
	if c.Pricing.PeakHours == nil {
		c.Pricing.PeakHours = defaults.PeakHours
	}
	if c.Pricing.PeakHourFee == 0 {
		c.Pricing.PeakHourFee = defaults.PeakHourFee.InexactFloat64()
	}
	if c.Pricing.MemberRate == 0 {
		c.Pricing.MemberRate = defaults.MemberRate.InexactFloat64()
	}
	if c.Pricing.NonMemberRate == 0 {
		c.Pricing.NonMemberRate = defaults.NonMemberRate.InexactFloat64()
	}
	if c.Pricing.OpeningHour == 0 {
		c.Pricing.OpeningHour = defaults.OpeningHour
	}
	if c.Pricing.ClosingHour == 0 {
		c.Pricing.ClosingHour = defaults.ClosingHour
	}

	matching := matcher.DefaultConfig()
	if c.Matching.SimilarityThreshold == 0 {
		c.Matching.SimilarityThreshold = matching.SimilarityThreshold
	}
	if c.Matching.TokenThreshold == 0 {
		c.Matching.TokenThreshold = matching.TokenThreshold
	}
	if c.Matching.MinFragmentLength == 0 {
		c.Matching.MinFragmentLength = matching.MinFragmentLength
	}

	if c.Payments.DueDaysAfterUsage == 0 {
		c.Payments.DueDaysAfterUsage = 1
	}
	if c.Payments.NotesMaxLength == 0 {
		c.Payments.NotesMaxLength = 500
	}
	if c.Payments.AppServiceFeeRate == 0 {
		c.Payments.AppServiceFeeRate = 0.10
	}
	if c.Payments.ReconcileLookbackHours == 0 {
		c.Payments.ReconcileLookbackHours = 24
	}

	if c.Notifications.Exchange == "" {
		c.Notifications.Exchange = "courtside.events"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if err := c.PricingConfig().Validate(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}
	if c.Matching.SimilarityThreshold <= 0 || c.Matching.SimilarityThreshold >= 1 {
		return fmt.Errorf("matching similarity_threshold must be between 0 and 1")
	}
	if c.Matching.TokenThreshold <= 0 || c.Matching.TokenThreshold >= 1 {
		return fmt.Errorf("matching token_threshold must be between 0 and 1")
	}
	if c.Payments.DueDaysAfterUsage < 0 {
		return fmt.Errorf("payments due_days_after_usage must be 0 or greater")
	}
	if c.Payments.AppServiceFeeRate <= 0 || c.Payments.AppServiceFeeRate >= 1 {
		return fmt.Errorf("payments app_service_fee_rate must be between 0 and 1")
	}
	if c.Payments.NotesMaxLength < 50 {
		return fmt.Errorf("payments notes_max_length must be at least 50")
	}

	for name, expr := range map[string]string{
		"orphan_cleanup_cron": c.Scheduler.OrphanCleanupCron,
		"overdue_sweep_cron":  c.Scheduler.OverdueSweepCron,
	} {
		if strings.TrimSpace(expr) == "" {
			continue
		}
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("scheduler %s is invalid: %w", name, err)
		}
	}

	if c.RateLimit.CooldownSeconds < 0 || c.RateLimit.PerUserPerHour < 0 || c.RateLimit.PerIPPerHour < 0 {
		return fmt.Errorf("rate_limit values must be 0 or greater")
	}

	if c.Email.Sender != "" && c.Email.Region == "" {
		return fmt.Errorf("email region is required when a sender is configured")
	}

	return nil
}

// PricingConfig converts the pricing section into the value injected into the fee calculator.
func (c *Config) PricingConfig() pricing.Config {
	return pricing.Config{
		PeakHours:     append([]int(nil), c.Pricing.PeakHours...),
		PeakHourFee:   decimal.NewFromFloat(c.Pricing.PeakHourFee),
		MemberRate:    decimal.NewFromFloat(c.Pricing.MemberRate),
		NonMemberRate: decimal.NewFromFloat(c.Pricing.NonMemberRate),
		OpeningHour:   c.Pricing.OpeningHour,
		ClosingHour:   c.Pricing.ClosingHour,
	}
}

func (c *Config) MatcherConfig() matcher.Config {
	return matcher.Config{
		SimilarityThreshold: c.Matching.SimilarityThreshold,
		TokenThreshold:      c.Matching.TokenThreshold,
		MinFragmentLength:   c.Matching.MinFragmentLength,
	}
}

func (c *Config) AppServiceFeeRate() decimal.Decimal {
	return decimal.NewFromFloat(c.Payments.AppServiceFeeRate)
}

// EmailEnabled reports whether SES receipts can be sent.
func (c *Config) EmailEnabled() bool {
	return c.Email.Sender != "" && c.Email.AccessKeyID != "" && c.Email.SecretAccessKey != ""
}
