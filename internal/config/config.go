package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/frontfeed/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. FRONTFEED_DATABASE_DSN.
const EnvPrefix = "FRONTFEED"

const slackWebhookPrefix = "https://hooks.slack.com/"

// Config is the root configuration for FrontFeed.
type Config struct {
	Database     DatabaseConfig
	Ingest       IngestConfig
	HTTP         HTTPConfig
	Notification NotificationConfig
	Metrics      MetricsConfig
	Companies    []CompanyConfig `validate:"dive"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// IngestConfig controls runs.
type IngestConfig struct {
	Mode       string        `validate:"oneof=eligible all"`
	Interval   time.Duration `validate:"gt=0"`
	StaleAfter time.Duration `validate:"gt=0"` // a "running" run older than this is reported as stale
	LockFile   string        `validate:"required"`
}

// HTTPConfig controls the shared outbound client.
type HTTPConfig struct {
	Timeout           time.Duration `validate:"gt=0"`
	UserAgent         string        `validate:"required"`
	RequestsPerSecond float64       `validate:"gte=0"` // per vendor host; 0 disables pacing
	Burst             int           `validate:"gte=1"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type" validate:"oneof=log slack"` // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"`                     // required if type is "slack"
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty disables export
}

// CompanyConfig describes one tracked company. Companies without ats_type or
// ats_slug are synced but never fetched.
type CompanyConfig struct {
	Name       string `yaml:"name" validate:"required"`
	ATSType    string `yaml:"ats_type"`
	ATSSlug    string `yaml:"ats_slug"`
	CareersURL string `yaml:"careers_url" validate:"omitempty,url"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Database     DatabaseConfig     `yaml:"database"`
	Ingest       rawIngestConfig    `yaml:"ingest"`
	HTTP         rawHTTPConfig      `yaml:"http"`
	Notification NotificationConfig `yaml:"notification"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Companies    []CompanyConfig    `yaml:"companies"`
}

type rawIngestConfig struct {
	Mode       string `yaml:"mode"`
	Interval   string `yaml:"interval"`
	StaleAfter string `yaml:"stale_after"`
	LockFile   string `yaml:"lock_file"`
}

type rawHTTPConfig struct {
	Timeout           string   `yaml:"timeout"`
	UserAgent         string   `yaml:"user_agent"`
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
}

// envOverrides are read from FRONTFEED_* variables and win over the file.
type envOverrides struct {
	DatabaseDriver  string `envconfig:"DATABASE_DRIVER"`
	DatabaseDSN     string `envconfig:"DATABASE_DSN"`
	StoreAll        *bool  `envconfig:"STORE_ALL"`
	SlackWebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`
}

const (
	defaultDriver     = "sqlite"
	defaultDSN        = "frontfeed.db"
	defaultMode       = "eligible"
	defaultInterval   = 6 * time.Hour
	defaultStaleAfter = 2 * time.Hour
	defaultLockFile   = "frontfeed.lock"
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "frontfeed/1.0 (+https://github.com/amishk599/frontfeed)"
	defaultRPS        = 2.0
	defaultBurst      = 1
)

// Load reads and parses the YAML config file at path, applies environment
// overrides, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes. Environment variables referenced as
// ${VAR} are expanded first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval, err := parseDuration("ingest.interval", raw.Ingest.Interval, defaultInterval)
	if err != nil {
		return nil, err
	}
	staleAfter, err := parseDuration("ingest.stale_after", raw.Ingest.StaleAfter, defaultStaleAfter)
	if err != nil {
		return nil, err
	}
	timeout, err := parseDuration("http.timeout", raw.HTTP.Timeout, defaultTimeout)
	if err != nil {
		return nil, err
	}

	rps := defaultRPS
	if raw.HTTP.RequestsPerSecond != nil {
		rps = *raw.HTTP.RequestsPerSecond
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: orDefault(raw.Database.Driver, defaultDriver),
			DSN:    orDefault(raw.Database.DSN, defaultDSN),
		},
		Ingest: IngestConfig{
			Mode:       orDefault(raw.Ingest.Mode, defaultMode),
			Interval:   interval,
			StaleAfter: staleAfter,
			LockFile:   orDefault(raw.Ingest.LockFile, defaultLockFile),
		},
		HTTP: HTTPConfig{
			Timeout:           timeout,
			UserAgent:         orDefault(raw.HTTP.UserAgent, defaultUserAgent),
			RequestsPerSecond: rps,
			Burst:             raw.HTTP.Burst,
		},
		Notification: NotificationConfig{
			Type:       orDefault(raw.Notification.Type, "log"),
			WebhookURL: raw.Notification.WebhookURL,
		},
		Metrics:   raw.Metrics,
		Companies: raw.Companies,
	}
	if cfg.HTTP.Burst == 0 {
		cfg.HTTP.Burst = defaultBurst
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("read %s_* environment: %w", EnvPrefix, err)
	}
	if env.DatabaseDriver != "" {
		cfg.Database.Driver = env.DatabaseDriver
	}
	if env.DatabaseDSN != "" {
		cfg.Database.DSN = env.DatabaseDSN
	}
	if env.StoreAll != nil {
		cfg.Ingest.Mode = defaultMode
		if *env.StoreAll {
			cfg.Ingest.Mode = "all"
		}
	}
	if env.SlackWebhookURL != "" {
		cfg.Notification.Type = "slack"
		cfg.Notification.WebhookURL = env.SlackWebhookURL
	}
	if env.MetricsTextfile != "" {
		cfg.Metrics.Textfile = env.MetricsTextfile
	}
	return nil
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Companies))
	for _, c := range cfg.Companies {
		key := strings.ToLower(c.Name)
		if seen[key] {
			return fmt.Errorf("invalid config: duplicate company name %q", c.Name)
		}
		seen[key] = true
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// Seeds returns the company list in the form the orchestrator syncs.
func (c *Config) Seeds() []model.Company {
	out := make([]model.Company, 0, len(c.Companies))
	for _, cc := range c.Companies {
		out = append(out, model.Company{
			Name:       strings.TrimSpace(cc.Name),
			ATSType:    strings.TrimSpace(cc.ATSType),
			ATSSlug:    strings.TrimSpace(cc.ATSSlug),
			CareersURL: strings.TrimSpace(cc.CareersURL),
		})
	}
	return out
}

// FindCompany looks a company up by name, case-insensitively.
func (c *Config) FindCompany(name string) (CompanyConfig, error) {
	for _, cc := range c.Companies {
		if strings.EqualFold(cc.Name, name) {
			return cc, nil
		}
	}
	return CompanyConfig{}, fmt.Errorf("%w: %q", model.ErrCompanyNotFound, name)
}

// UnsupportedCompanies returns companies whose ats_type is set but not in
// supported. They are still synced; a run fetches nothing for them.
func (c *Config) UnsupportedCompanies(supported []string) []CompanyConfig {
	var out []CompanyConfig
	for _, cc := range c.Companies {
		if cc.ATSType != "" && !slices.Contains(supported, cc.ATSType) {
			out = append(out, cc)
		}
	}
	return out
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	return d, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
