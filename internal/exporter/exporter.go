package exporter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rendis/flowdoc/internal/logging"
	"github.com/rendis/flowdoc/internal/render"
	"github.com/rendis/flowdoc/internal/selector"
	"github.com/rendis/flowdoc/internal/store"
	"github.com/rendis/flowdoc/pkg/schema"
)

// Run statuses recorded in export_runs.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Exporter renders stored flows in batch and hands the artifacts to a Sink.
// It is used by the scheduler for cron jobs and by the MCP export tool.
type Exporter struct {
	store  store.Store
	sel    *selector.Selector
	logger *slog.Logger
}

// New creates an exporter.
func New(st store.Store, sel *selector.Selector, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: st, sel: sel, logger: logger}
}

// Export renders every flow matching the selector expression in each of the
// given formats and writes the artifacts to the sink. Returns the number of
// flows exported. A missing catalog is not an error: the renderers degrade
// to sentinel labels.
func (e *Exporter) Export(ctx context.Context, selectorExpr string, formats []render.Format, sink Sink) (int, error) {
	catalog, err := e.loadCatalog(ctx)
	if err != nil {
		return 0, err
	}

	records, err := e.store.ListFlows(ctx, store.FlowFilter{})
	if err != nil {
		return 0, err
	}

	flows := make([]*schema.Flow, 0, len(records))
	for _, r := range records {
		flows = append(flows, r.Definition)
	}
	matched, err := e.sel.Select(ctx, flows, catalog, selectorExpr)
	if err != nil {
		return 0, err
	}

	renderer := render.NewRenderer(catalog)
	for _, flow := range matched {
		fctx := logging.WithFlowID(ctx, flow.ID)
		for _, format := range formats {
			out, err := renderer.Render(flow, format)
			if err != nil {
				return 0, err
			}
			name := render.SuggestedFilename(flow, format)
			if err := sink.Write(fctx, name, []byte(out)); err != nil {
				return 0, schema.NewErrorf(schema.ErrCodeExport,
					"write %s: %s", name, err.Error()).WithCause(err)
			}
			e.logger.DebugContext(logging.WithFormat(fctx, string(format)), "artifact written", "file", name)
		}
	}
	return len(matched), nil
}

// RunJob executes a stored export job end to end: export into the job's
// output directory, record the run, and update the job's last-run fields.
// The returned run reflects the outcome even when the export failed.
func (e *Exporter) RunJob(ctx context.Context, jobID string) (*store.ExportRun, error) {
	ctx = logging.WithJobID(ctx, jobID)

	job, err := e.store.GetExportJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	formats := make([]render.Format, 0, len(job.Formats))
	for _, f := range job.Formats {
		format, err := render.ParseFormat(f)
		if err != nil {
			return e.finishRun(ctx, job, &store.ExportRun{
				JobID: job.ID, StartedAt: time.Now().UTC(),
			}, err)
		}
		formats = append(formats, format)
	}

	run := &store.ExportRun{JobID: job.ID, StartedAt: time.Now().UTC()}
	count, err := e.Export(ctx, job.Selector, formats, NewDirSink(job.OutputDir))
	run.FlowCount = count
	return e.finishRun(ctx, job, run, err)
}

// finishRun records the run outcome and updates the job, logging rather than
// failing on bookkeeping errors so the export result is not masked.
func (e *Exporter) finishRun(ctx context.Context, job *store.ExportJob, run *store.ExportRun, runErr error) (*store.ExportRun, error) {
	now := time.Now().UTC()
	run.CompletedAt = &now
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = RunStatusCompleted
	}

	if err := e.store.RecordExportRun(ctx, run); err != nil {
		e.logger.ErrorContext(ctx, "record export run failed", "error", err)
	}
	if err := e.store.UpdateExportJob(ctx, job.ID, store.ExportJobUpdate{
		LastRunAt:     &run.StartedAt,
		LastRunStatus: run.Status,
	}); err != nil {
		e.logger.ErrorContext(ctx, "update export job failed", "error", err)
	}

	if runErr != nil {
		e.logger.ErrorContext(ctx, "export job failed", "error", runErr)
		return run, runErr
	}
	e.logger.InfoContext(ctx, "export job completed", "flows", run.FlowCount)
	return run, nil
}

// loadCatalog returns the latest catalog revision, or nil when none is stored.
func (e *Exporter) loadCatalog(ctx context.Context) (*schema.Catalog, error) {
	record, err := e.store.GetCatalog(ctx)
	if err != nil {
		var ferr *schema.FlowdocError
		if errors.As(err, &ferr) && ferr.Code == schema.ErrCodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return record.Definition, nil
}
