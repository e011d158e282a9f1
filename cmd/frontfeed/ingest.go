package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/frontfeed/internal/adapter"
	"github.com/amishk599/frontfeed/internal/config"
	"github.com/amishk599/frontfeed/internal/ingest"
	"github.com/amishk599/frontfeed/internal/metrics"
	"github.com/amishk599/frontfeed/internal/model"
	"github.com/amishk599/frontfeed/internal/runlock"
	"github.com/amishk599/frontfeed/internal/store"
)

var (
	ingestStoreAll bool
	ingestDryRun   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass and exit",
	Long:  "Fetches every configured company once, classifies the postings and reconciles them into the store.",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestStoreAll, "store-all", false, "persist every fetched job, not only eligible ones")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "fetch and classify but persist nothing")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := newIngestRunner(ctx, cfg, ingestDryRun, ingestStoreAll, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	summary, err := runner.run(ctx)
	if errors.Is(err, model.ErrRunInProgress) {
		logger.Warn("another run holds the lock, nothing to do", "lock", runner.lock.Path())
		return err
	}
	printSummary(summary)
	return err
}

// ingestRunner is one fully wired ingestion pipeline. It satisfies
// scheduler.Runner so `start` and `ingest` share it.
type ingestRunner struct {
	cfg      *config.Config
	store    model.Store
	lock     *runlock.Lock
	orch     *ingest.Orchestrator
	recorder *metrics.Recorder
	logger   *slog.Logger
}

func newIngestRunner(ctx context.Context, cfg *config.Config, dryRun, storeAll bool, logger *slog.Logger) (*ingestRunner, error) {
	mode, err := ingest.ParseMode(cfg.Ingest.Mode)
	if err != nil {
		return nil, err
	}
	if storeAll {
		mode = ingest.ModeStoreAll
	}

	lock, err := runlock.New(cfg.Ingest.LockFile)
	if err != nil {
		return nil, err
	}

	recorder, err := metrics.NewRecorder(store.Collectors()...)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	st, err := openStore(ctx, cfg, dryRun, logger)
	if err != nil {
		return nil, err
	}

	httpClient := setupHTTPClient(cfg)
	router := adapter.NewRouter(httpClient, logger)
	for _, cc := range cfg.UnsupportedCompanies(router.Sources()) {
		logger.Warn("unsupported ats type, company will be synced but not fetched", "company", cc.Name, "ats_type", cc.ATSType)
	}

	c := newClassifier()
	orch := ingest.NewOrchestrator(st, router, c.normalizer, c.filter, logger,
		ingest.WithMode(mode),
		ingest.WithMetrics(recorder),
		ingest.WithNotifier(setupNotifier(cfg, httpClient, logger)),
	)

	logger.Info("config loaded",
		"driver", cfg.Database.Driver,
		"mode", string(mode),
		"companies", len(cfg.Companies),
		"requests_per_second", cfg.HTTP.RequestsPerSecond,
	)

	return &ingestRunner{
		cfg:      cfg,
		store:    st,
		lock:     lock,
		orch:     orch,
		recorder: recorder,
		logger:   logger,
	}, nil
}

// RunOnce runs one pass; the scheduler only needs the error.
func (r *ingestRunner) RunOnce(ctx context.Context) error {
	_, err := r.run(ctx)
	return err
}

func (r *ingestRunner) run(ctx context.Context) (ingest.Summary, error) {
	if err := r.lock.TryLock(); err != nil {
		return ingest.Summary{}, err
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("releasing run lock", "error", err)
		}
	}()

	summary, err := r.orch.Run(ctx, r.cfg.Seeds())
	if werr := r.recorder.WriteTextfile(r.cfg.Metrics.Textfile); werr != nil {
		r.logger.Warn("writing metrics textfile", "path", r.cfg.Metrics.Textfile, "error", werr)
	}
	return summary, err
}

func (r *ingestRunner) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("closing store", "error", err)
	}
}

func printSummary(s ingest.Summary) {
	if s.RunID == "" {
		return
	}
	fmt.Printf("\nRun %s: %s\n", s.RunID, s.Status)
	fmt.Printf("  companies processed: %d\n", s.CompaniesProcessed)
	fmt.Printf("  jobs fetched:        %d\n", s.JobsFetched)
	fmt.Printf("  eligible jobs:       %d\n", s.JobsFound)
	fmt.Printf("  inserted / updated:  %d / %d\n", s.Inserted, s.Updated)
	for _, ce := range s.CompanyErrors {
		fmt.Printf("  failed: %s (%s): %s\n", ce.Company, ce.Source, ce.Err)
	}
	if s.Error != "" {
		fmt.Printf("  error: %s\n", s.Error)
	}
}
