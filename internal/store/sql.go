package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/frontfeed/internal/model"
)

// SQLStore persists companies, jobs and ingestion runs in SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open connects to the database, applies pending migrations and returns the
// store. driverName is DriverSQLite or DriverPostgres; for SQLite dsn is a
// file path.
func Open(ctx context.Context, driverName, dsn string, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d, err := lookupDialect(driverName)
	if err != nil {
		return nil, err
	}
	if err := d.register(); err != nil {
		return nil, err
	}

	db, err := sql.Open(d.instrumentedName(), d.dsn(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", d.name, err)
	}
	if d.name == DriverSQLite {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s db: %w", d.name, err)
	}
	if err := d.migrate(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s db: %w", d.name, err)
	}

	return &SQLStore{db: db, dialect: d, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) q(query string) string {
	return s.dialect.rebind(query)
}

// --- jobs ---

const jobColumns = `id, company_id, source, source_id, title, location, work_mode,
	employment_type, level, pay_min, pay_max, pay_currency, description_snippet,
	posted_at, found_at, apply_url, eligible, raw, updated_at`

// UpsertJob inserts the job or, when (source, source_id) already exists,
// overwrites every field except found_at.
func (s *SQLStore) UpsertJob(ctx context.Context, rec model.JobRecord) (bool, error) {
	raw, err := json.Marshal(rec.Raw)
	if err != nil {
		return false, fmt.Errorf("encoding raw job %s/%s: %w", rec.Source, rec.SourceID, err)
	}
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning upsert of %s/%s: %w", rec.Source, rec.SourceID, err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, s.q(`SELECT id FROM jobs WHERE source = ? AND source_id = ?`),
		rec.Source, rec.SourceID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		foundAt := rec.FoundAt
		if foundAt.IsZero() {
			foundAt = now
		}
		err = tx.QueryRowContext(ctx, s.q(`INSERT INTO jobs (
			company_id, source, source_id, title, location, work_mode, employment_type,
			level, pay_min, pay_max, pay_currency, description_snippet, posted_at,
			found_at, apply_url, eligible, raw, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			rec.CompanyID, rec.Source, rec.SourceID, rec.Title, rec.Location, string(rec.WorkMode),
			rec.EmploymentType, string(rec.Level), nullInt(rec.PayMin), nullInt(rec.PayMax),
			rec.PayCurrency, rec.DescriptionSnippet, rec.PostedAt, foundAt.UTC(), rec.ApplyURL,
			rec.Eligible, string(raw), now,
		).Scan(&id)
		if err != nil {
			return false, fmt.Errorf("inserting job %s/%s: %w", rec.Source, rec.SourceID, err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("committing job %s/%s: %w", rec.Source, rec.SourceID, err)
		}
		return true, nil

	case err != nil:
		return false, fmt.Errorf("looking up job %s/%s: %w", rec.Source, rec.SourceID, err)
	}

	_, err = tx.ExecContext(ctx, s.q(`UPDATE jobs SET
		company_id = ?, title = ?, location = ?, work_mode = ?, employment_type = ?,
		level = ?, pay_min = ?, pay_max = ?, pay_currency = ?, description_snippet = ?,
		posted_at = ?, apply_url = ?, eligible = ?, raw = ?, updated_at = ?
		WHERE id = ?`),
		rec.CompanyID, rec.Title, rec.Location, string(rec.WorkMode), rec.EmploymentType,
		string(rec.Level), nullInt(rec.PayMin), nullInt(rec.PayMax), rec.PayCurrency,
		rec.DescriptionSnippet, rec.PostedAt, rec.ApplyURL, rec.Eligible, string(raw), now, id,
	)
	if err != nil {
		return false, fmt.Errorf("updating job %s/%s: %w", rec.Source, rec.SourceID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing job %s/%s: %w", rec.Source, rec.SourceID, err)
	}
	return false, nil
}

// FindJob looks a job up by its natural key.
func (s *SQLStore) FindJob(ctx context.Context, source, sourceID string) (model.JobRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+jobColumns+` FROM jobs WHERE source = ? AND source_id = ?`), source, sourceID)
	rec, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.JobRecord{}, false, nil
	}
	if err != nil {
		return model.JobRecord{}, false, fmt.Errorf("finding job %s/%s: %w", source, sourceID, err)
	}
	return rec, true, nil
}

// ListJobs returns up to limit jobs with id > afterID in id order.
func (s *SQLStore) ListJobs(ctx context.Context, afterID int64, limit int) ([]model.JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+jobColumns+` FROM jobs WHERE id > ? ORDER BY id LIMIT ?`), afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs after %d: %w", afterID, err)
	}
	defer rows.Close()

	var out []model.JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateClassification rewrites the derived fields of an existing job. The
// raw payload and found_at are left alone.
func (s *SQLStore) UpdateClassification(ctx context.Context, rec model.JobRecord) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE jobs SET
		title = ?, location = ?, work_mode = ?, employment_type = ?, level = ?,
		pay_min = ?, pay_max = ?, pay_currency = ?, description_snippet = ?,
		posted_at = ?, apply_url = ?, eligible = ?, updated_at = ?
		WHERE id = ?`),
		rec.Title, rec.Location, string(rec.WorkMode), rec.EmploymentType, string(rec.Level),
		nullInt(rec.PayMin), nullInt(rec.PayMax), rec.PayCurrency, rec.DescriptionSnippet,
		rec.PostedAt, rec.ApplyURL, rec.Eligible, s.now().UTC(), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("reclassifying job %d: %w", rec.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("reclassifying job %d: %w", rec.ID, sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (model.JobRecord, error) {
	var (
		rec            model.JobRecord
		workMode       string
		level          string
		payMin, payMax sql.NullInt64
		raw            string
	)
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.Source, &rec.SourceID, &rec.Title, &rec.Location,
		&workMode, &rec.EmploymentType, &level, &payMin, &payMax, &rec.PayCurrency,
		&rec.DescriptionSnippet, &rec.PostedAt, &rec.FoundAt, &rec.ApplyURL, &rec.Eligible,
		&raw, &rec.UpdatedAt,
	)
	if err != nil {
		return model.JobRecord{}, err
	}
	rec.WorkMode = model.WorkMode(workMode)
	rec.Level = model.Level(level)
	if payMin.Valid {
		rec.PayMin = &payMin.Int64
	}
	if payMax.Valid {
		rec.PayMax = &payMax.Int64
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Raw); err != nil {
			return model.JobRecord{}, fmt.Errorf("decoding raw job %d: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// --- companies ---

// SyncCompanies upserts companies by name. Companies missing from the list
// are left in place.
func (s *SQLStore) SyncCompanies(ctx context.Context, companies []model.Company) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning company sync: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	for _, c := range companies {
		_, err := tx.ExecContext(ctx, s.q(`INSERT INTO companies (name, ats_type, ats_slug, careers_url, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET
				ats_type = excluded.ats_type,
				ats_slug = excluded.ats_slug,
				careers_url = excluded.careers_url,
				updated_at = excluded.updated_at`),
			c.Name, c.ATSType, c.ATSSlug, c.CareersURL, now,
		)
		if err != nil {
			return fmt.Errorf("syncing company %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing company sync: %w", err)
	}
	return nil
}

// ListCompanies returns every stored company in id order.
func (s *SQLStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, ats_type, ats_slug, careers_url FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.ATSType, &c.ATSSlug, &c.CareersURL); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// --- runs ---

// StartRun records a new run in the running state.
func (s *SQLStore) StartRun(ctx context.Context) (model.Run, error) {
	run := model.Run{
		ID:        uuid.NewString(),
		Status:    model.RunRunning,
		StartedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO ingest_runs (id, status, started_at) VALUES (?, ?, ?)`),
		run.ID, string(run.Status), run.StartedAt)
	if err != nil {
		return model.Run{}, fmt.Errorf("starting run: %w", err)
	}
	return run, nil
}

// FinishRun stores the run's final status and counters.
func (s *SQLStore) FinishRun(ctx context.Context, run model.Run) error {
	finishedAt := s.now().UTC()
	if run.FinishedAt != nil {
		finishedAt = run.FinishedAt.UTC()
	}
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE ingest_runs SET
		status = ?, finished_at = ?, companies_processed = ?, jobs_found = ?, error = ?
		WHERE id = ?`),
		string(run.Status), finishedAt, run.CompaniesProcessed, run.JobsFound, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, status, started_at, finished_at,
		companies_processed, jobs_found, error
		FROM ingest_runs ORDER BY started_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		var (
			run      model.Run
			status   string
			finished sql.NullTime
		)
		if err := rows.Scan(&run.ID, &status, &run.StartedAt, &finished,
			&run.CompaniesProcessed, &run.JobsFound, &run.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Status = model.RunStatus(status)
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
