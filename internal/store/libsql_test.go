package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowdoc/pkg/schema"
)

func newTestStore(t *testing.T) *LibSQLStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := NewLibSQLStore("file:" + dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(dir)
	})
	return s
}

func seedFlow(t *testing.T, s *LibSQLStore) *FlowRecord {
	t.Helper()
	flow := &schema.Flow{
		ID:       uuid.New().String(),
		Name:     "Enroll Student",
		Priority: schema.PriorityHigh,
		Status:   schema.FlowStatusDraft,
		DomainID: "d1",
		Steps: []schema.Step{
			{Number: 1, ActorID: "a1", Action: "Submit application"},
		},
	}
	record := NewFlowRecord(flow)
	require.NoError(t, s.SaveFlow(context.Background(), record))
	return record
}

// --- Flow Tests ---

func TestSaveAndGetFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	record := seedFlow(t, s)

	got, err := s.GetFlow(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "Enroll Student", got.Name)
	assert.Equal(t, schema.FlowStatusDraft, got.Status)
	assert.Equal(t, schema.PriorityHigh, got.Priority)
	assert.Equal(t, "d1", got.DomainID)
	require.NotNil(t, got.Definition)
	assert.Len(t, got.Definition.Steps, 1)
}

func TestGetFlow_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetFlow(context.Background(), "nonexistent")
	require.Error(t, err)
	ferr, ok := err.(*schema.FlowdocError)
	require.True(t, ok)
	assert.Equal(t, schema.ErrCodeNotFound, ferr.Code)
}

func TestSaveFlowUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	record := seedFlow(t, s)

	record.Definition.Status = schema.FlowStatusApproved
	updated := NewFlowRecord(record.Definition)
	require.NoError(t, s.SaveFlow(ctx, updated))

	got, err := s.GetFlow(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.FlowStatusApproved, got.Status)
}

func TestSaveFlowAppendsRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	record := seedFlow(t, s)

	record.Definition.Name = "Enroll Student v2"
	require.NoError(t, s.SaveFlow(ctx, NewFlowRecord(record.Definition)))

	revisions, err := s.GetFlowRevisions(ctx, record.ID, 0)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, int64(1), revisions[0].Sequence)
	assert.Equal(t, int64(2), revisions[1].Sequence)
	assert.Equal(t, "Enroll Student", revisions[0].Definition.Name)
	assert.Equal(t, "Enroll Student v2", revisions[1].Definition.Name)
}

func TestGetFlowRevisionsSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	record := seedFlow(t, s)
	require.NoError(t, s.SaveFlow(ctx, NewFlowRecord(record.Definition)))

	revisions, err := s.GetFlowRevisions(ctx, record.ID, 1)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, int64(2), revisions[0].Sequence)
}

func TestListFlowsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedFlow(t, s)
	other := &schema.Flow{
		ID: uuid.New().String(), Name: "Bill Customer",
		Priority: schema.PriorityLow, Status: schema.FlowStatusApproved, DomainID: "d2",
	}
	require.NoError(t, s.SaveFlow(ctx, NewFlowRecord(other)))

	all, err := s.ListFlows(ctx, FlowFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// Ordered by name.
	assert.Equal(t, "Bill Customer", all[0].Name)

	status := schema.FlowStatusApproved
	approved, err := s.ListFlows(ctx, FlowFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, other.ID, approved[0].ID)

	byDomain, err := s.ListFlows(ctx, FlowFilter{DomainID: "d1"})
	require.NoError(t, err)
	assert.Len(t, byDomain, 1)
}

func TestDeleteFlowKeepsRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	record := seedFlow(t, s)

	require.NoError(t, s.DeleteFlow(ctx, record.ID))

	_, err := s.GetFlow(ctx, record.ID)
	require.Error(t, err)

	revisions, err := s.GetFlowRevisions(ctx, record.ID, 0)
	require.NoError(t, err)
	assert.Len(t, revisions, 1)
}

func TestDeleteFlow_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteFlow(context.Background(), "nonexistent")
	require.Error(t, err)
}

// --- Catalog Tests ---

func TestSaveAndGetCatalog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &CatalogRecord{Definition: &schema.Catalog{
		Domains: []schema.ServiceDomain{{ID: "d1", Name: "Admissions"}},
	}}
	require.NoError(t, s.SaveCatalog(ctx, record))
	assert.Equal(t, int64(1), record.Revision)

	got, err := s.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Revision)
	require.Len(t, got.Definition.Domains, 1)
	assert.Equal(t, "Admissions", got.Definition.Domains[0].Name)
}

func TestGetCatalogReturnsLatestRevision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &CatalogRecord{Definition: &schema.Catalog{
		Domains: []schema.ServiceDomain{{ID: "d1", Name: "Admissions"}},
	}}
	require.NoError(t, s.SaveCatalog(ctx, first))

	second := &CatalogRecord{Definition: &schema.Catalog{
		Domains: []schema.ServiceDomain{{ID: "d1", Name: "Admissions"}, {ID: "d2", Name: "Billing"}},
	}}
	require.NoError(t, s.SaveCatalog(ctx, second))

	got, err := s.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Revision, got.Revision)
	assert.Len(t, got.Definition.Domains, 2)

	old, err := s.GetCatalogRevision(ctx, first.Revision)
	require.NoError(t, err)
	assert.Len(t, old.Definition.Domains, 1)
}

func TestGetCatalog_Empty(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetCatalog(context.Background())
	require.Error(t, err)
	ferr, ok := err.(*schema.FlowdocError)
	require.True(t, ok)
	assert.Equal(t, schema.ErrCodeNotFound, ferr.Code)
}

// --- Export Job Tests ---

func seedExportJob(t *testing.T, s *LibSQLStore) *ExportJob {
	t.Helper()
	job := &ExportJob{
		ID:             uuid.New().String(),
		Name:           "nightly-docs",
		Selector:       `flow.status == "approved"`,
		Formats:        []string{"document", "sequence"},
		OutputDir:      "/tmp/docs",
		CronExpression: "0 2 * * *",
		Enabled:        true,
	}
	require.NoError(t, s.CreateExportJob(context.Background(), job))
	return job
}

func TestCreateAndGetExportJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job := seedExportJob(t, s)

	got, err := s.GetExportJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "nightly-docs", got.Name)
	assert.Equal(t, []string{"document", "sequence"}, got.Formats)
	assert.Equal(t, "0 2 * * *", got.CronExpression)
	assert.True(t, got.Enabled)
}

func TestUpdateExportJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job := seedExportJob(t, s)

	now := time.Now().UTC()
	next := now.Add(24 * time.Hour)
	disabled := false
	require.NoError(t, s.UpdateExportJob(ctx, job.ID, ExportJobUpdate{
		Enabled:       &disabled,
		LastRunAt:     &now,
		NextRunAt:     &next,
		LastRunStatus: "completed",
	}))

	got, err := s.GetExportJob(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Equal(t, "completed", got.LastRunStatus)
	require.NotNil(t, got.LastRunAt)
	require.NotNil(t, got.NextRunAt)
}

func TestUpdateExportJob_NoFields(t *testing.T) {
	s := newTestStore(t)
	job := seedExportJob(t, s)
	require.NoError(t, s.UpdateExportJob(context.Background(), job.ID, ExportJobUpdate{}))
}

func TestListExportJobsEnabledFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedExportJob(t, s)

	disabled := &ExportJob{
		ID: uuid.New().String(), Name: "paused", Formats: []string{"json"},
		OutputDir: "/tmp", CronExpression: "@hourly", Enabled: false,
	}
	require.NoError(t, s.CreateExportJob(ctx, disabled))

	enabled := true
	jobs, err := s.ListExportJobs(ctx, ExportJobFilter{Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "nightly-docs", jobs[0].Name)
}

func TestDeleteExportJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job := seedExportJob(t, s)

	require.NoError(t, s.DeleteExportJob(ctx, job.ID))
	_, err := s.GetExportJob(ctx, job.ID)
	require.Error(t, err)
}

// --- Export Run Tests ---

func TestRecordAndListExportRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job := seedExportJob(t, s)

	started := time.Now().UTC().Add(-time.Minute)
	completed := time.Now().UTC()
	run := &ExportRun{
		JobID:       job.ID,
		Status:      "completed",
		FlowCount:   7,
		StartedAt:   started,
		CompletedAt: &completed,
	}
	require.NoError(t, s.RecordExportRun(ctx, run))
	assert.NotZero(t, run.ID)

	failed := &ExportRun{JobID: job.ID, Status: "failed", Error: "sink unavailable"}
	require.NoError(t, s.RecordExportRun(ctx, failed))

	runs, err := s.ListExportRuns(ctx, job.ID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Most recent first.
	assert.Equal(t, "failed", runs[0].Status)
	assert.Equal(t, "sink unavailable", runs[0].Error)
	assert.Equal(t, 7, runs[1].FlowCount)
}

func TestVacuum(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Vacuum(context.Background()))
}
