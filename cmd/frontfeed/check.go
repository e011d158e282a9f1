package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/frontfeed/internal/adapter"
	"github.com/amishk599/frontfeed/internal/inspect"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch one company per ATS type, print counts, exit",
	Long:  "Smoke test for adapters: fetches the first configured company of each ATS type and logs how many jobs came back and how many are eligible. Does not write to the store.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	c := newClassifier()
	inspector := inspect.New(adapter.NewRouter(setupHTTPClient(cfg), logger), c.normalizer, c.filter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fetch only one company per ATS type
	seen := make(map[string]bool)
	failed := 0
	for _, company := range cfg.Seeds() {
		if !company.Fetchable() {
			continue
		}
		if seen[company.ATSType] {
			logger.Debug("skipping (ATS already tested)", "company", company.Name, "ats_type", company.ATSType)
			continue
		}
		seen[company.ATSType] = true

		report, err := inspector.Inspect(ctx, inspect.Target{Company: company.Name, ATSType: company.ATSType, ATSSlug: company.ATSSlug}, false)
		if err != nil {
			failed++
			logger.Error("check failed", "company", company.Name, "ats_type", company.ATSType, "error", err)
			continue
		}
		logger.Info("check ok",
			"company", company.Name,
			"ats_type", company.ATSType,
			"fetched", report.Count,
			"eligible", len(report.Eligible()),
		)
		if ctx.Err() != nil {
			break
		}
	}

	logger.Info("check complete", "ats_types", len(seen), "failed", failed)
	return nil
}
