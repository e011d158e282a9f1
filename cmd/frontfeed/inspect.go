package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/frontfeed/internal/adapter"
	"github.com/amishk599/frontfeed/internal/config"
	"github.com/amishk599/frontfeed/internal/inspect"
)

var (
	inspectATSType string
	inspectATSSlug string
	inspectJSON    bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [company]",
	Short: "Fetch one company and show how its jobs classify",
	Long: `Fetches a single board through the adapter router without touching the store.
With no company and no --ats-type/--ats-slug, shows the company picker TUI.
--json prints the raw jobs instead; --debug adds the first vendor response.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspectCmd,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectATSType, "ats-type", "", "ATS type to fetch (overrides the configured company)")
	inspectCmd.Flags().StringVar(&inspectATSSlug, "ats-slug", "", "ATS slug to fetch (overrides the configured company)")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the fetched jobs as JSON instead of the TUI")
	rootCmd.AddCommand(inspectCmd)
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	// stdout carries JSON or the TUI, so logs go elsewhere.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if inspectJSON {
		logger = newLogger(os.Stderr, debug)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	target, hasTarget, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	c := newClassifier()
	inspector := inspect.New(adapter.NewRouter(setupHTTPClient(cfg), logger), c.normalizer, c.filter)

	if inspectJSON {
		if !hasTarget {
			return errors.New("inspect --json needs a company name or --ats-type and --ats-slug")
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		report, err := inspector.Inspect(ctx, target, debug)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if hasTarget {
		_, err := inspectOnce(inspector, target)
		return err
	}
	return runInspectPicker(cfg, inspector)
}

// resolveTarget builds the board to fetch from the positional company name
// and the --ats-type/--ats-slug flags, flags winning.
func resolveTarget(cfg *config.Config, args []string) (inspect.Target, bool, error) {
	var t inspect.Target
	if len(args) == 1 {
		cc, err := cfg.FindCompany(args[0])
		if err != nil {
			return t, false, err
		}
		t = inspect.Target{Company: cc.Name, ATSType: cc.ATSType, ATSSlug: cc.ATSSlug}
	}
	if inspectATSType != "" {
		t.ATSType = inspectATSType
	}
	if inspectATSSlug != "" {
		t.ATSSlug = inspectATSSlug
	}
	return t, t.Company != "" || t.ATSType != "" || t.ATSSlug != "", nil
}

// inspectOnce fetches t behind a spinner, then opens the split-pane view.
func inspectOnce(inspector *inspect.Inspector, t inspect.Target) (wantQuit bool, err error) {
	label := t.Company
	if label == "" {
		label = t.ATSType + ":" + t.ATSSlug
	}
	report, err := inspect.RunLoader(label, func(ctx context.Context) (*inspect.Report, error) {
		return inspector.Inspect(ctx, t, false)
	})
	if err != nil {
		fmt.Printf("Error fetching jobs: %v\n", err)
		return false, err
	}
	wantQuit, err = inspect.RunInspectTUI(report)
	if err != nil {
		fmt.Printf("TUI error: %v\n", err)
	}
	return wantQuit, err
}

func runInspectPicker(cfg *config.Config, inspector *inspect.Inspector) error {
	var targets []inspect.Target
	for _, c := range cfg.Seeds() {
		if c.Fetchable() {
			targets = append(targets, inspect.Target{Company: c.Name, ATSType: c.ATSType, ATSSlug: c.ATSSlug})
		}
	}
	if len(targets) == 0 {
		fmt.Println("No fetchable companies in config.")
		return nil
	}

	for {
		choice, err := inspect.RunCompanyPicker(targets)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		// Fetch and TUI errors are printed by inspectOnce; go back to the picker.
		if wantQuit, _ := inspectOnce(inspector, targets[choice]); wantQuit {
			return nil
		}
	}
}
