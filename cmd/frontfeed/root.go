package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/frontfeed/internal/config"
	"github.com/amishk599/frontfeed/internal/eligibility"
	"github.com/amishk599/frontfeed/internal/model"
	"github.com/amishk599/frontfeed/internal/normalize"
	"github.com/amishk599/frontfeed/internal/notifier"
	"github.com/amishk599/frontfeed/internal/ratelimit"
	"github.com/amishk599/frontfeed/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "frontfeed",
	Short: "Frontend job feed from company career boards",
	Long:  "FrontFeed pulls postings from company ATS boards, classifies them, and keeps the eligible frontend roles in a database.",
	// Default to `start` so that `frontfeed` with no args runs the daemon.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: FRONTFEED_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > FRONTFEED_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("FRONTFEED_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stdout, dbg)
}

func newLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// setupHTTPClient builds the client every adapter shares. Requests are paced
// per vendor host and carry the configured User-Agent.
func setupHTTPClient(cfg *config.Config) *http.Client {
	limiter := ratelimit.NewHostLimiter(cfg.HTTP.RequestsPerSecond, cfg.HTTP.Burst)
	return &http.Client{
		Timeout:   cfg.HTTP.Timeout,
		Transport: ratelimit.NewTransport(http.DefaultTransport, limiter, cfg.HTTP.UserAgent),
	}
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.RunNotifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// openStore opens the configured database, or a no-op store in dry-run mode.
func openStore(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (model.Store, error) {
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		return store.NewNopStore(), nil
	}
	s, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	return s, nil
}

// classifier bundles the pieces that turn a vendor posting into a verdict.
type classifier struct {
	normalizer *normalize.Normalizer
	filter     *eligibility.FrontendFilter
}

func newClassifier() classifier {
	return classifier{
		normalizer: normalize.New(nil),
		filter:     eligibility.New(nil),
	}
}
