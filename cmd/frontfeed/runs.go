package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/frontfeed/internal/model"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent ingestion runs",
	Long:  "Prints the most recent ingestion runs, newest first. A run still marked running after ingest.stale_after is shown as stale.",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	now := time.Now()
	fmt.Printf("%-36s %-8s %-20s %-9s %9s %6s  %s\n", "Run", "Status", "Started", "Duration", "Companies", "Jobs", "Error")
	fmt.Println(strings.Repeat("─", 100))
	for _, r := range runs {
		fmt.Printf("%-36s %-8s %-20s %-9s %9d %6d  %s\n",
			r.ID,
			displayStatus(r, now, cfg.Ingest.StaleAfter),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			runDuration(r),
			r.CompaniesProcessed,
			r.JobsFound,
			truncate(r.Error, 60),
		)
	}
	return nil
}

// displayStatus reports a run that has been "running" longer than staleAfter
// as stale. The stored record is left alone.
func displayStatus(r model.Run, now time.Time, staleAfter time.Duration) string {
	if r.Status == model.RunRunning && staleAfter > 0 && now.Sub(r.StartedAt) > staleAfter {
		return "stale"
	}
	return string(r.Status)
}

func runDuration(r model.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}
