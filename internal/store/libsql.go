package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/rendis/flowdoc/pkg/schema"
)

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-20000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// DB returns the underlying *sql.DB for advanced usage.
func (s *LibSQLStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Vacuum runs VACUUM on the database.
func (s *LibSQLStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// --- Flows ---

// SaveFlow upserts a flow record and appends a revision with a monotonically
// increasing per-flow sequence, in one transaction.
func (s *LibSQLStore) SaveFlow(ctx context.Context, record *FlowRecord) error {
	def, err := json.Marshal(record.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// In WAL mode, BeginTx alone may start a deferred transaction. A
	// write-intent statement forces the write lock before the sequence read.
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version, name) VALUES (-1, '_lock_noop')`); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM schema_version WHERE version = -1`); err != nil {
		return fmt.Errorf("cleanup write lock: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO flows (id, name, definition, status, priority, domain_id, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, definition=excluded.definition, status=excluded.status,
		   priority=excluded.priority, domain_id=excluded.domain_id, version=excluded.version,
		   updated_at=CURRENT_TIMESTAMP`,
		record.ID, record.Name, string(def), nullStr(string(record.Status)),
		nullStr(string(record.Priority)), nullStr(record.DomainID), nullStr(record.Version),
		timeOrNow(record.CreatedAt), timeOrNow(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert flow: %w", err)
	}

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM flow_revisions WHERE flow_id = ?`, record.ID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("get next revision sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO flow_revisions (flow_id, sequence, definition, timestamp) VALUES (?, ?, ?, ?)`,
		record.ID, seq, string(def), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert flow revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flow: %w", err)
	}
	return nil
}

func (s *LibSQLStore) GetFlow(ctx context.Context, id string) (*FlowRecord, error) {
	r := &FlowRecord{}
	var defJSON string
	var status, priority, domainID, version sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, definition, status, priority, domain_id, version, created_at, updated_at
		 FROM flows WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &defJSON, &status, &priority, &domainID, &version, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("flow", id)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(defJSON), &r.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	r.Status = schema.FlowStatus(status.String)
	r.Priority = schema.FlowPriority(priority.String)
	r.DomainID = domainID.String
	r.Version = version.String
	return r, nil
}

func (s *LibSQLStore) ListFlows(ctx context.Context, filter FlowFilter) ([]*FlowRecord, error) {
	var where []string
	var args []any

	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		where = append(where, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.DomainID != "" {
		where = append(where, "domain_id = ?")
		args = append(args, filter.DomainID)
	}
	if filter.Since != nil {
		where = append(where, "updated_at >= ?")
		args = append(args, *filter.Since)
	}

	query := `SELECT id, name, definition, status, priority, domain_id, version, created_at, updated_at FROM flows`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*FlowRecord
	for rows.Next() {
		r := &FlowRecord{}
		var defJSON string
		var status, priority, domainID, version sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &defJSON, &status, &priority, &domainID, &version, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(defJSON), &r.Definition); err != nil {
			return nil, fmt.Errorf("unmarshal definition: %w", err)
		}
		r.Status = schema.FlowStatus(status.String)
		r.Priority = schema.FlowPriority(priority.String)
		r.DomainID = domainID.String
		r.Version = version.String
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *LibSQLStore) DeleteFlow(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flows WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "flow", id)
}

// GetFlowRevisions returns revisions with sequence > since, ordered by sequence ASC.
// Revisions survive flow deletion so the history stays auditable.
func (s *LibSQLStore) GetFlowRevisions(ctx context.Context, flowID string, since int64) ([]*FlowRevision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, flow_id, sequence, definition, change_note, timestamp
		 FROM flow_revisions WHERE flow_id = ? AND sequence > ? ORDER BY sequence ASC`,
		flowID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []*FlowRevision
	for rows.Next() {
		rev := &FlowRevision{}
		var defJSON string
		var note sql.NullString
		if err := rows.Scan(&rev.ID, &rev.FlowID, &rev.Sequence, &defJSON, &note, &rev.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(defJSON), &rev.Definition); err != nil {
			return nil, fmt.Errorf("unmarshal revision definition: %w", err)
		}
		rev.ChangeNote = note.String
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

// --- Catalog ---

// SaveCatalog inserts a new catalog revision. The assigned revision number is
// written back into the record.
func (s *LibSQLStore) SaveCatalog(ctx context.Context, record *CatalogRecord) error {
	def, err := json.Marshal(record.Definition)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO catalogs (definition, created_at) VALUES (?, ?)`,
		string(def), timeOrNow(record.CreatedAt),
	)
	if err != nil {
		return err
	}
	record.Revision, err = res.LastInsertId()
	return err
}

func (s *LibSQLStore) GetCatalog(ctx context.Context) (*CatalogRecord, error) {
	return s.scanCatalog(s.db.QueryRowContext(ctx,
		`SELECT revision, definition, created_at FROM catalogs ORDER BY revision DESC LIMIT 1`))
}

func (s *LibSQLStore) GetCatalogRevision(ctx context.Context, revision int64) (*CatalogRecord, error) {
	return s.scanCatalog(s.db.QueryRowContext(ctx,
		`SELECT revision, definition, created_at FROM catalogs WHERE revision = ?`, revision))
}

func (s *LibSQLStore) scanCatalog(row *sql.Row) (*CatalogRecord, error) {
	r := &CatalogRecord{}
	var defJSON string
	err := row.Scan(&r.Revision, &defJSON, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("catalog", "latest")
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(defJSON), &r.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return r, nil
}

// --- Export Jobs ---

func (s *LibSQLStore) CreateExportJob(ctx context.Context, job *ExportJob) error {
	formats, err := json.Marshal(job.Formats)
	if err != nil {
		return fmt.Errorf("marshal formats: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO export_jobs (id, name, selector, formats, output_dir, cron_expression, enabled, last_run_at, next_run_at, last_run_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, nullStr(job.Selector), string(formats), job.OutputDir,
		job.CronExpression, job.Enabled, nullTime(job.LastRunAt), nullTime(job.NextRunAt),
		nullStr(job.LastRunStatus), timeOrNow(job.CreatedAt),
	)
	return err
}

func (s *LibSQLStore) GetExportJob(ctx context.Context, id string) (*ExportJob, error) {
	j := &ExportJob{}
	var selector, lastStatus sql.NullString
	var formatsJSON string
	var lastRun, nextRun sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, selector, formats, output_dir, cron_expression, enabled, last_run_at, next_run_at, last_run_status, created_at
		 FROM export_jobs WHERE id = ?`, id,
	).Scan(&j.ID, &j.Name, &selector, &formatsJSON, &j.OutputDir, &j.CronExpression,
		&j.Enabled, &lastRun, &nextRun, &lastStatus, &j.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("export_job", id)
	}
	if err != nil {
		return nil, err
	}
	j.Selector = selector.String
	j.LastRunStatus = lastStatus.String
	if err := json.Unmarshal([]byte(formatsJSON), &j.Formats); err != nil {
		return nil, fmt.Errorf("unmarshal formats: %w", err)
	}
	if lastRun.Valid {
		j.LastRunAt = &lastRun.Time
	}
	if nextRun.Valid {
		j.NextRunAt = &nextRun.Time
	}
	return j, nil
}

func (s *LibSQLStore) UpdateExportJob(ctx context.Context, id string, update ExportJobUpdate) error {
	var sets []string
	var args []any

	if update.Enabled != nil {
		sets = append(sets, "enabled = ?")
		args = append(args, *update.Enabled)
	}
	if update.Selector != nil {
		sets = append(sets, "selector = ?")
		args = append(args, nullStr(*update.Selector))
	}
	if update.LastRunAt != nil {
		sets = append(sets, "last_run_at = ?")
		args = append(args, *update.LastRunAt)
	}
	if update.NextRunAt != nil {
		sets = append(sets, "next_run_at = ?")
		args = append(args, *update.NextRunAt)
	}
	if update.LastRunStatus != "" {
		sets = append(sets, "last_run_status = ?")
		args = append(args, update.LastRunStatus)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE export_jobs SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "export_job", id)
}

func (s *LibSQLStore) ListExportJobs(ctx context.Context, filter ExportJobFilter) ([]*ExportJob, error) {
	var where []string
	var args []any

	if filter.Enabled != nil {
		where = append(where, "enabled = ?")
		args = append(args, *filter.Enabled)
	}

	query := `SELECT id, name, selector, formats, output_dir, cron_expression, enabled, last_run_at, next_run_at, last_run_status, created_at FROM export_jobs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*ExportJob
	for rows.Next() {
		j := &ExportJob{}
		var selector, lastStatus sql.NullString
		var formatsJSON string
		var lastRun, nextRun sql.NullTime
		if err := rows.Scan(&j.ID, &j.Name, &selector, &formatsJSON, &j.OutputDir, &j.CronExpression,
			&j.Enabled, &lastRun, &nextRun, &lastStatus, &j.CreatedAt); err != nil {
			return nil, err
		}
		j.Selector = selector.String
		j.LastRunStatus = lastStatus.String
		if err := json.Unmarshal([]byte(formatsJSON), &j.Formats); err != nil {
			return nil, fmt.Errorf("unmarshal formats: %w", err)
		}
		if lastRun.Valid {
			j.LastRunAt = &lastRun.Time
		}
		if nextRun.Valid {
			j.NextRunAt = &nextRun.Time
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *LibSQLStore) DeleteExportJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM export_jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "export_job", id)
}

// --- Export Runs ---

func (s *LibSQLStore) RecordExportRun(ctx context.Context, run *ExportRun) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO export_runs (job_id, status, flow_count, error, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.JobID, run.Status, run.FlowCount, nullStr(run.Error),
		timeOrNow(run.StartedAt), nullTime(run.CompletedAt),
	)
	if err != nil {
		return err
	}
	run.ID, err = res.LastInsertId()
	return err
}

func (s *LibSQLStore) ListExportRuns(ctx context.Context, jobID string, limit int) ([]*ExportRun, error) {
	query := `SELECT id, job_id, status, flow_count, error, started_at, completed_at
	 FROM export_runs WHERE job_id = ? ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*ExportRun
	for rows.Next() {
		r := &ExportRun{}
		var errMsg sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.JobID, &r.Status, &r.FlowCount, &errMsg, &r.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		r.Error = errMsg.String
		if completedAt.Valid {
			r.CompletedAt = &completedAt.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// --- Helpers ---

func storeNotFound(resource, id string) *schema.FlowdocError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", resource, id)
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storeNotFound(resource, id)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*LibSQLStore)(nil)
