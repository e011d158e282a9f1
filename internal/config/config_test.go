package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/frontfeed/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://frontfeed@localhost/frontfeed
ingest:
  mode: all
  interval: 30m
  stale_after: 1h
http:
  timeout: 10s
  requests_per_second: 0.5
  burst: 2
companies:
  - name: Acme
    ats_type: greenhouse
    ats_slug: acme
    careers_url: https://acme.example.com/careers
  - name: Initech
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://frontfeed@localhost/frontfeed" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Ingest.Mode != "all" || cfg.Ingest.Interval != 30*time.Minute || cfg.Ingest.StaleAfter != time.Hour {
		t.Errorf("Ingest = %+v", cfg.Ingest)
	}
	if cfg.HTTP.Timeout != 10*time.Second || cfg.HTTP.RequestsPerSecond != 0.5 || cfg.HTTP.Burst != 2 {
		t.Errorf("HTTP = %+v", cfg.HTTP)
	}
	if len(cfg.Companies) != 2 || cfg.Companies[0].ATSSlug != "acme" {
		t.Errorf("Companies = %+v", cfg.Companies)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "companies: []\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "frontfeed.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Ingest.Mode != "eligible" || cfg.Ingest.Interval != 6*time.Hour || cfg.Ingest.StaleAfter != 2*time.Hour {
		t.Errorf("Ingest = %+v", cfg.Ingest)
	}
	if cfg.Ingest.LockFile != "frontfeed.lock" {
		t.Errorf("LockFile = %q", cfg.Ingest.LockFile)
	}
	if cfg.HTTP.Timeout != 30*time.Second || cfg.HTTP.RequestsPerSecond != 2 || cfg.HTTP.Burst != 1 {
		t.Errorf("HTTP = %+v", cfg.HTTP)
	}
	if cfg.HTTP.UserAgent == "" {
		t.Error("expected a default user agent")
	}
	if cfg.Notification.Type != "log" {
		t.Errorf("Notification.Type = %q, want log", cfg.Notification.Type)
	}
}

func TestLoad_ExplicitZeroRateDisablesPacing(t *testing.T) {
	cfg, err := Load(writeConfig(t, "http:\n  requests_per_second: 0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.RequestsPerSecond != 0 {
		t.Errorf("RequestsPerSecond = %v, want 0", cfg.HTTP.RequestsPerSecond)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "ingest: [broken"))
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{"zero interval", "ingest:\n  interval: 0\n", "Ingest.Interval"},
		{"bad duration", "ingest:\n  interval: soon\n", "ingest.interval"},
		{"unknown driver", "database:\n  driver: mysql\n", "Database.Driver"},
		{"unknown mode", "ingest:\n  mode: some\n", "Ingest.Mode"},
		{"company without name", "companies:\n  - ats_type: lever\n    ats_slug: x\n", "Name"},
		{"bad careers url", "companies:\n  - name: Acme\n    careers_url: not a url\n", "CareersURL"},
		{"duplicate names", "companies:\n  - name: Acme\n  - name: acme\n", "duplicate company"},
		{"slack without webhook", "notification:\n  type: slack\n", "webhook_url is required"},
		{"slack bad webhook", "notification:\n  type: slack\n  webhook_url: https://example.com/hook\n", "must start with"},
		{"unknown notifier", "notification:\n  type: email\n", "Notification.Type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("ACME_SLUG", "acme-inc")
	cfg, err := Load(writeConfig(t, "companies:\n  - name: Acme\n    ats_type: lever\n    ats_slug: ${ACME_SLUG}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Companies[0].ATSSlug != "acme-inc" {
		t.Errorf("ATSSlug = %q, want expanded value", cfg.Companies[0].ATSSlug)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FRONTFEED_DATABASE_DRIVER", "postgres")
	t.Setenv("FRONTFEED_DATABASE_DSN", "postgres://env/frontfeed")
	t.Setenv("FRONTFEED_STORE_ALL", "true")
	t.Setenv("FRONTFEED_SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")
	t.Setenv("FRONTFEED_METRICS_TEXTFILE", "/var/lib/node_exporter/frontfeed.prom")

	cfg, err := Load(writeConfig(t, "database:\n  dsn: file.db\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://env/frontfeed" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Ingest.Mode != "all" {
		t.Errorf("Mode = %q, want all", cfg.Ingest.Mode)
	}
	if cfg.Notification.Type != "slack" || cfg.Notification.WebhookURL != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("Notification = %+v", cfg.Notification)
	}
	if cfg.Metrics.Textfile != "/var/lib/node_exporter/frontfeed.prom" {
		t.Errorf("Metrics.Textfile = %q", cfg.Metrics.Textfile)
	}
}

func TestLoad_EnvStoreAllFalse(t *testing.T) {
	t.Setenv("FRONTFEED_STORE_ALL", "false")
	cfg, err := Load(writeConfig(t, "ingest:\n  mode: all\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ingest.Mode != "eligible" {
		t.Errorf("Mode = %q, want eligible", cfg.Ingest.Mode)
	}
}

func TestLoad_EnvBadBool(t *testing.T) {
	t.Setenv("FRONTFEED_STORE_ALL", "maybe")
	if _, err := Load(writeConfig(t, "")); err == nil {
		t.Fatal("expected error for unparseable FRONTFEED_STORE_ALL")
	}
}

func TestConfig_Seeds(t *testing.T) {
	cfg := &Config{Companies: []CompanyConfig{
		{Name: " Acme ", ATSType: "lever", ATSSlug: " acme "},
		{Name: "Initech"},
	}}
	seeds := cfg.Seeds()
	if len(seeds) != 2 {
		t.Fatalf("expected 2 seeds, got %d", len(seeds))
	}
	if seeds[0].Name != "Acme" || seeds[0].ATSSlug != "acme" || !seeds[0].Fetchable() {
		t.Errorf("seed[0] = %+v", seeds[0])
	}
	if seeds[1].Fetchable() {
		t.Error("company without ATS config should not be fetchable")
	}
}

func TestConfig_FindCompany(t *testing.T) {
	cfg := &Config{Companies: []CompanyConfig{{Name: "Acme", ATSType: "lever", ATSSlug: "acme"}}}
	cc, err := cfg.FindCompany("acme")
	if err != nil || cc.Name != "Acme" {
		t.Errorf("FindCompany(acme) = %+v, %v", cc, err)
	}
	if _, err := cfg.FindCompany("globex"); !errors.Is(err, model.ErrCompanyNotFound) {
		t.Errorf("FindCompany(globex) error = %v, want ErrCompanyNotFound", err)
	}
}

func TestConfig_UnsupportedCompanies(t *testing.T) {
	cfg := &Config{Companies: []CompanyConfig{
		{Name: "Acme", ATSType: "lever"},
		{Name: "Globex", ATSType: "taleo"},
		{Name: "Initech"},
	}}
	got := cfg.UnsupportedCompanies([]string{"greenhouse", "lever"})
	if len(got) != 1 || got[0].Name != "Globex" {
		t.Errorf("UnsupportedCompanies = %+v", got)
	}
}
