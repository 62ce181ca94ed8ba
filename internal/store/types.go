package store

import (
	"time"

	"github.com/rendis/flowdoc/pkg/schema"
)

// FlowRecord is the persisted representation of a flow document. The full
// definition is stored as JSON; a few fields are denormalized into columns
// so cheap filters do not need to parse every document.
type FlowRecord struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Definition *schema.Flow        `json:"definition"`
	Status     schema.FlowStatus   `json:"status,omitempty"`
	Priority   schema.FlowPriority `json:"priority,omitempty"`
	DomainID   string              `json:"domain_id,omitempty"`
	Version    string              `json:"version,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// NewFlowRecord builds a record from a flow document, denormalizing the
// filterable fields.
func NewFlowRecord(flow *schema.Flow) *FlowRecord {
	return &FlowRecord{
		ID:         flow.ID,
		Name:       flow.Name,
		Definition: flow,
		Status:     flow.Status,
		Priority:   flow.Priority,
		DomainID:   flow.DomainID,
		Version:    flow.Version,
	}
}

// FlowRevision is an immutable entry in the per-flow change log. Every
// SaveFlow appends one with a monotonically increasing sequence.
type FlowRevision struct {
	ID         int64        `json:"id"`
	FlowID     string       `json:"flow_id"`
	Sequence   int64        `json:"sequence"`
	Definition *schema.Flow `json:"definition"`
	ChangeNote string       `json:"change_note,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// CatalogRecord is a persisted catalog revision. Catalogs are never updated
// in place; each save creates a new revision and readers take the latest.
type CatalogRecord struct {
	Revision   int64           `json:"revision"`
	Definition *schema.Catalog `json:"definition"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ExportJob is a cron-triggered batch export: render every flow matching the
// selector expression in the listed formats and hand the results to a sink.
type ExportJob struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Selector       string     `json:"selector,omitempty"`
	Formats        []string   `json:"formats"`
	OutputDir      string     `json:"output_dir"`
	CronExpression string     `json:"cron_expression"`
	Enabled        bool       `json:"enabled"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	LastRunStatus  string     `json:"last_run_status,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ExportRun is an immutable record of one export job execution.
type ExportRun struct {
	ID          int64      `json:"id"`
	JobID       string     `json:"job_id"`
	Status      string     `json:"status"` // completed, failed
	FlowCount   int        `json:"flow_count"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// --- Filter and update types ---

// FlowFilter specifies criteria for listing flows. Richer predicates go
// through the selector engines; these cover the indexed columns.
type FlowFilter struct {
	Status   *schema.FlowStatus   `json:"status,omitempty"`
	Priority *schema.FlowPriority `json:"priority,omitempty"`
	DomainID string               `json:"domain_id,omitempty"`
	Since    *time.Time           `json:"since,omitempty"`
	Limit    int                  `json:"limit,omitempty"`
	Offset   int                  `json:"offset,omitempty"`
}

// ExportJobUpdate specifies mutable fields of an export job.
type ExportJobUpdate struct {
	Enabled       *bool      `json:"enabled,omitempty"`
	Selector      *string    `json:"selector,omitempty"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	NextRunAt     *time.Time `json:"next_run_at,omitempty"`
	LastRunStatus string     `json:"last_run_status,omitempty"`
}

// ExportJobFilter specifies criteria for listing export jobs.
type ExportJobFilter struct {
	Enabled *bool `json:"enabled,omitempty"`
	Limit   int   `json:"limit,omitempty"`
}
