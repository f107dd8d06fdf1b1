package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"javasegment/internal/application/common/retry"
	"javasegment/internal/config"
	"javasegment/internal/port/outbound"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

// fakeTx implements the pgx.Tx methods the repository uses.
type fakeTx struct {
	pgx.Tx

	execs      []execCall
	execErr    error
	failAt     int
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	if f.execErr != nil && len(f.execs) >= f.failAt {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeDB struct {
	txs      []*fakeTx
	newTx    func() *fakeTx
	beginErr error
	execs    []string
	pingErr  error
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	tx := &fakeTx{}
	if f.newTx != nil {
		tx = f.newTx()
	}
	f.txs = append(f.txs, tx)
	return tx, nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

func newTestRepository(db *fakeDB) *PostgreSQLReportRepository {
	repo := NewPostgreSQLReportRepository(db)
	repo.tm.retry = retry.NewRetryExecutor(&retry.RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 1,
	}, retry.RetryableCheckerFunc(IsRetryableError))
	return repo
}

func sampleRun() outbound.ReportRun {
	return outbound.ReportRun{
		RunID:       uuid.MustParse("6f1d3c9e-2b10-4a43-9a3e-7b4c1c2e4f0e"),
		ProjectID:   "p1",
		ProjectName: "demo",
		Path:        "A.java",
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Entries: []outbound.ReportRunEntry{
			{Index: 1, Label: "A::a", Signature: "void a()", StartLine: 2, EndLine: 3, Status: "ok", Report: "fine"},
			{Index: 2, Label: "A::b", Signature: "void b()", StartLine: 4, EndLine: 5, Status: "failed", Report: "Error: x", Error: "x"},
		},
	}
}

func TestPostgreSQLReportRepository_SaveReportRun(t *testing.T) {
	db := &fakeDB{}
	repo := newTestRepository(db)

	require.NoError(t, repo.SaveReportRun(context.Background(), sampleRun()))

	require.Len(t, db.txs, 1)
	tx := db.txs[0]
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	require.Len(t, tx.execs, 2)
	assert.Contains(t, tx.execs[0].sql, "INSERT INTO segment_reports")
	assert.Equal(t, "A::a", tx.execs[0].args[5])
	assert.Equal(t, 2, tx.execs[1].args[4])
	assert.Equal(t, "failed", tx.execs[1].args[9])
}

func TestPostgreSQLReportRepository_SaveReportRunFailures(t *testing.T) {
	t.Run("empty run", func(t *testing.T) {
		err := newTestRepository(&fakeDB{}).SaveReportRun(context.Background(), outbound.ReportRun{})
		require.Error(t, err)
	})

	t.Run("constraint violation rolls back without retry", func(t *testing.T) {
		db := &fakeDB{newTx: func() *fakeTx {
			return &fakeTx{execErr: &pgconn.PgError{Code: "23505"}, failAt: 2}
		}}
		err := newTestRepository(db).SaveReportRun(context.Background(), sampleRun())

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConstraintViolation)
		require.Len(t, db.txs, 1)
		assert.True(t, db.txs[0].rolledBack)
		assert.False(t, db.txs[0].committed)
	})

	t.Run("deadlock is retried", func(t *testing.T) {
		attempts := 0
		db := &fakeDB{newTx: func() *fakeTx {
			attempts++
			if attempts == 1 {
				return &fakeTx{execErr: &pgconn.PgError{Code: "40P01"}, failAt: 1}
			}
			return &fakeTx{}
		}}
		require.NoError(t, newTestRepository(db).SaveReportRun(context.Background(), sampleRun()))

		require.Len(t, db.txs, 2)
		assert.True(t, db.txs[0].rolledBack)
		assert.True(t, db.txs[1].committed)
	})

	t.Run("begin failure", func(t *testing.T) {
		err := newTestRepository(&fakeDB{beginErr: errors.New("pool closed")}).SaveReportRun(context.Background(), sampleRun())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})
}

func TestPostgreSQLReportRepository_EnsureSchemaAndPing(t *testing.T) {
	db := &fakeDB{}
	repo := newTestRepository(db)

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS segment_reports")

	require.NoError(t, repo.Ping(context.Background()))
	db.pingErr = &pgconn.PgError{Code: "08006"}
	assert.ErrorIs(t, repo.Ping(context.Background()), ErrConnectionFailed)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.True(t, IsRetryableError(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryableError(errors.New("ERROR: deadlock detected")))
	assert.False(t, IsRetryableError(&pgconn.PgError{Code: "23505"}))
}

func TestPoolConfig(t *testing.T) {
	valid := config.DatabaseConfig{Host: "localhost", Port: 5432, User: "dev", Password: "pw", Name: "javasegment"}

	poolConfig, err := PoolConfig(valid)
	require.NoError(t, err)
	assert.Equal(t, int32(defaultMaxConnections), poolConfig.MaxConns)
	assert.Equal(t, "javasegment", poolConfig.ConnConfig.Database)

	valid.MaxConnections = 3
	poolConfig, err = PoolConfig(valid)
	require.NoError(t, err)
	assert.Equal(t, int32(3), poolConfig.MaxConns)

	tests := []struct {
		name   string
		mutate func(c *config.DatabaseConfig)
	}{
		{"missing host", func(c *config.DatabaseConfig) { c.Host = "" }},
		{"bad port", func(c *config.DatabaseConfig) { c.Port = 0 }},
		{"missing name", func(c *config.DatabaseConfig) { c.Name = "" }},
		{"missing user", func(c *config.DatabaseConfig) { c.User = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			_, err := PoolConfig(c)
			assert.Error(t, err)
		})
	}
}
