package repository

import (
	"context"
	"errors"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/port/outbound"

	"github.com/jackc/pgx/v5"
)

// Schema creates the report table. One row is stored per reported segment.
const Schema = `
CREATE TABLE IF NOT EXISTS segment_reports (
    id           BIGSERIAL PRIMARY KEY,
    run_id       UUID        NOT NULL,
    project_id   TEXT        NOT NULL DEFAULT '',
    project_name TEXT        NOT NULL DEFAULT '',
    path         TEXT        NOT NULL DEFAULT '',
    segment_idx  INTEGER     NOT NULL,
    label        TEXT        NOT NULL,
    signature    TEXT        NOT NULL,
    start_line   INTEGER     NOT NULL,
    end_line     INTEGER     NOT NULL,
    status       TEXT        NOT NULL,
    report       TEXT        NOT NULL,
    error        TEXT        NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL,
    UNIQUE (run_id, segment_idx)
);
CREATE INDEX IF NOT EXISTS segment_reports_project_idx ON segment_reports (project_id, created_at);
`

const insertReportRow = `
INSERT INTO segment_reports (
    run_id, project_id, project_name, path, segment_idx, label, signature,
    start_line, end_line, status, report, error, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const defaultTransactionRetries = 2

// PostgreSQLReportRepository stores report runs in PostgreSQL.
type PostgreSQLReportRepository struct {
	db DB
	tm *TransactionManager
}

// NewPostgreSQLReportRepository creates a repository on db, normally a *pgxpool.Pool.
func NewPostgreSQLReportRepository(db DB) *PostgreSQLReportRepository {
	return &PostgreSQLReportRepository{
		db: db,
		tm: NewTransactionManager(db, defaultTransactionRetries),
	}
}

// EnsureSchema creates the table and index when missing.
func (r *PostgreSQLReportRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return WrapError(err, "ensure schema")
	}
	return nil
}

// SaveReportRun writes every entry of run in one transaction.
func (r *PostgreSQLReportRepository) SaveReportRun(ctx context.Context, run outbound.ReportRun) error {
	if len(run.Entries) == 0 {
		return errors.New("report run has no entries")
	}

	err := r.tm.WithTransactionRetry(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, entry := range run.Entries {
			if _, err := tx.Exec(ctx, insertReportRow,
				run.RunID, run.ProjectID, run.ProjectName, run.Path,
				entry.Index, entry.Label, entry.Signature,
				entry.StartLine, entry.EndLine, entry.Status, entry.Report, entry.Error,
				run.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return WrapError(err, "save report run")
	}

	slogger.Debug(ctx, "Report run saved", slogger.Fields{
		"run_id":  run.RunID.String(),
		"entries": len(run.Entries),
	})
	return nil
}

// Ping checks database connectivity.
func (r *PostgreSQLReportRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return WrapError(err, "ping")
	}
	return nil
}

