package model

import (
	"context"
	"time"
)

// RawJob is a single posting as a vendor adapter saw it, before any
// classification. Optional fields are empty strings when the vendor did not
// provide them.
type RawJob struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Location       string `json:"location,omitempty"`
	Description    string `json:"description,omitempty"`
	ApplyURL       string `json:"applyUrl,omitempty"`
	PostedAt       string `json:"postedAt,omitempty"`
	EmploymentType string `json:"employmentType,omitempty"`
	SalaryText     string `json:"salaryText,omitempty"`
	Department     string `json:"department,omitempty"`
}

// FetchResult is the output of one adapter fetch.
type FetchResult struct {
	Source string   `json:"source"`
	Jobs   []RawJob `json:"jobs"`
}

// WorkMode classifies where a job is performed relative to Texas and the US.
type WorkMode string

const (
	WorkModeRemoteUS WorkMode = "remote_us"
	WorkModeRemoteTX WorkMode = "remote_tx"
	WorkModeOnsiteTX WorkMode = "onsite_tx"
	WorkModeHybridTX WorkMode = "hybrid_tx"
	WorkModeOther    WorkMode = "other"
)

// Level is an inferred seniority. The zero value means "unknown".
type Level string

const (
	LevelIntern    Level = "intern"
	LevelJunior    Level = "junior"
	LevelMid       Level = "mid"
	LevelSenior    Level = "senior"
	LevelStaff     Level = "staff"
	LevelPrincipal Level = "principal"
	LevelLead      Level = "lead"
)

// NormalizedJob is the canonical, classified form of a RawJob.
type NormalizedJob struct {
	Title              string
	Location           string
	WorkMode           WorkMode
	EmploymentType     string
	Level              Level
	PayMin             *int64
	PayMax             *int64
	PayCurrency        string
	DescriptionSnippet string
	PostedAt           string
	FoundAt            time.Time
	ApplyURL           string
	Source             string
	SourceID           string
	Raw                RawJob
}

// JobRecord is a NormalizedJob as persisted, keyed by (Source, SourceID).
type JobRecord struct {
	ID        int64
	CompanyID int64
	Eligible  bool
	UpdatedAt time.Time
	NormalizedJob
}

// Company is a tracked employer and how to reach its job board. A company
// with an empty ATSType or ATSSlug is kept but never fetched.
type Company struct {
	ID         int64
	Name       string
	ATSType    string
	ATSSlug    string
	CareersURL string
}

// Fetchable reports whether the company carries enough config to be fetched.
func (c Company) Fetchable() bool {
	return c.ATSType != "" && c.ATSSlug != ""
}

// RunStatus is the lifecycle state of an ingestion run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// Run is one execution of the ingestion orchestrator.
type Run struct {
	ID                 string
	Status             RunStatus
	StartedAt          time.Time
	FinishedAt         *time.Time
	CompaniesProcessed int
	JobsFound          int
	Error              string
}

// CompanyError records a company whose fetch failed during a run.
type CompanyError struct {
	Company string
	Source  string
	Err     string
}

// RunSummary is what an ingestion run reports once it has finished.
type RunSummary struct {
	RunID              string
	Status             RunStatus
	StartedAt          time.Time
	FinishedAt         time.Time
	CompaniesProcessed int
	JobsFetched        int
	JobsFound          int
	Inserted           int
	Updated            int
	CompanyErrors      []CompanyError
	Error              string
}

// Adapter fetches every open posting for one vendor board. A slug is an
// opaque, vendor-specific locator (often pipe-delimited).
type Adapter interface {
	Source() string
	FetchJobs(ctx context.Context, slug string) (FetchResult, error)
}

// JobStore persists classified jobs.
type JobStore interface {
	// UpsertJob reconciles a job by (Source, SourceID). An existing row keeps
	// its original FoundAt; everything else is overwritten. inserted reports
	// whether a new row was created.
	UpsertJob(ctx context.Context, rec JobRecord) (inserted bool, err error)
	FindJob(ctx context.Context, source, sourceID string) (JobRecord, bool, error)
	// ListJobs returns up to limit jobs with ID greater than afterID, in ID order.
	ListJobs(ctx context.Context, afterID int64, limit int) ([]JobRecord, error)
	// UpdateClassification overwrites derived fields of an existing row
	// without touching FoundAt or the raw payload.
	UpdateClassification(ctx context.Context, rec JobRecord) error
}

// CompanyStore persists the tracked company list.
type CompanyStore interface {
	// SyncCompanies upserts companies by Name.
	SyncCompanies(ctx context.Context, companies []Company) error
	ListCompanies(ctx context.Context) ([]Company, error)
}

// RunStore records ingestion runs.
type RunStore interface {
	StartRun(ctx context.Context) (Run, error)
	FinishRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// Store is the full persistence collaborator used by the orchestrator.
type Store interface {
	JobStore
	CompanyStore
	RunStore
	Close() error
}

// JobFilter decides whether a normalized job is eligible.
type JobFilter interface {
	Eligible(job NormalizedJob) bool
}

// RunNotifier reports a finished run somewhere an operator will see it.
type RunNotifier interface {
	NotifyRun(ctx context.Context, summary RunSummary) error
}
