package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/frontfeed/internal/ingest"
	"github.com/amishk599/frontfeed/internal/runlock"
)

var backfillBatch int

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Re-classify stored jobs from their raw payload",
	Long:  "Walks every stored job in id order, re-runs normalization and eligibility on the stored raw posting and overwrites the derived fields. found_at is kept.",
	RunE:  runBackfill,
}

func init() {
	backfillCmd.Flags().IntVar(&backfillBatch, "batch", ingest.DefaultBackfillBatch, fmt.Sprintf("rows per batch (max %d)", ingest.MaxBackfillBatch))
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A backfill and an ingest run must not interleave writes.
	lock, err := runlock.New(cfg.Ingest.LockFile)
	if err != nil {
		return err
	}
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer lock.Unlock()

	st, err := openStore(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	c := newClassifier()
	res, err := ingest.NewBackfiller(st, c.normalizer, c.filter, logger, backfillBatch).Run(ctx)
	fmt.Printf("Backfill: %d processed, %d updated\n", res.Processed, res.Updated)
	return err
}
