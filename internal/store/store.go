package store

import "context"

// Store defines the persistence layer contract.
// All implementations must be safe for concurrent use.
type Store interface {
	// Flows
	SaveFlow(ctx context.Context, record *FlowRecord) error
	GetFlow(ctx context.Context, id string) (*FlowRecord, error)
	ListFlows(ctx context.Context, filter FlowFilter) ([]*FlowRecord, error)
	DeleteFlow(ctx context.Context, id string) error

	// Flow revision history (append-only)
	GetFlowRevisions(ctx context.Context, flowID string, since int64) ([]*FlowRevision, error)

	// Catalog (revisioned; GetCatalog returns the latest revision)
	SaveCatalog(ctx context.Context, record *CatalogRecord) error
	GetCatalog(ctx context.Context) (*CatalogRecord, error)
	GetCatalogRevision(ctx context.Context, revision int64) (*CatalogRecord, error)

	// Export jobs
	CreateExportJob(ctx context.Context, job *ExportJob) error
	GetExportJob(ctx context.Context, id string) (*ExportJob, error)
	UpdateExportJob(ctx context.Context, id string, update ExportJobUpdate) error
	ListExportJobs(ctx context.Context, filter ExportJobFilter) ([]*ExportJob, error)
	DeleteExportJob(ctx context.Context, id string) error

	// Export runs (append-only)
	RecordExportRun(ctx context.Context, run *ExportRun) error
	ListExportRuns(ctx context.Context, jobID string, limit int) ([]*ExportRun, error)

	// Maintenance
	Migrate(ctx context.Context) error
	Vacuum(ctx context.Context) error

	// Lifecycle
	Close() error
}
