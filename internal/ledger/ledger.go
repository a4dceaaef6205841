// Package ledger keeps a local record of seeding runs: which farms each run created and
// the outcome of every backend call, so ids can be looked up and exported later.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	runsTable  = "_farmseed_runs"
	farmsTable = "_farmseed_farms"
	callsTable = "_farmseed_calls"
)

var ErrRunNotFound = errors.New("run not found")

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS _farmseed_runs (
		id VARCHAR(36) PRIMARY KEY,
		command VARCHAR(32) NOT NULL,
		endpoint VARCHAR(255) NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NULL,
		farms_created INTEGER NOT NULL DEFAULT 0,
		calls_ok INTEGER NOT NULL DEFAULT 0,
		calls_failed INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS _farmseed_farms (
		run_id VARCHAR(36) NOT NULL,
		farm_id VARCHAR(128) NOT NULL,
		name VARCHAR(255) NOT NULL,
		share_price BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (run_id, farm_id)
	)`,
	`CREATE TABLE IF NOT EXISTS _farmseed_calls (
		id VARCHAR(36) PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		seq INTEGER NOT NULL,
		method VARCHAR(64) NOT NULL,
		target VARCHAR(255) NOT NULL,
		amount BIGINT NOT NULL DEFAULT 0,
		outcome VARCHAR(16) NOT NULL,
		error TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
}

type Run struct {
	ID           string
	Command      string
	Endpoint     string
	DryRun       bool
	StartedAt    time.Time
	FinishedAt   *time.Time
	FarmsCreated int
	CallsOK      int
	CallsFailed  int
}

type Farm struct {
	RunID      string
	FarmID     string
	Name       string
	SharePrice uint64
	CreatedAt  time.Time
}

type Call struct {
	RunID     string
	Seq       int
	Method    string
	Target    string // farm id or principal the call was about
	Amount    uint64
	Outcome   string
	Error     string
	CreatedAt time.Time
}

type Ledger struct {
	db  *sql.DB
	qb  squirrel.StatementBuilderType
	now func() time.Time
}

// Open connects to the ledger database and makes sure its tables exist.
func Open(ctx context.Context, provider, url string) (*Ledger, error) {
	driver, dsn, placeholder, err := driverFor(provider, url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if driver == "sqlite3" {
		// One writer keeps sqlite from reporting SQLITE_BUSY between the seeder's sequential writes.
		db.SetMaxOpenConns(1)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to ledger: %w", err)
	}

	l := &Ledger{
		db:  db,
		qb:  squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		now: func() time.Time { return time.Now().UTC() },
	}
	if err := l.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create ledger tables: %w", err)
		}
	}
	return nil
}

// StartRun inserts a new run and returns its id.
func (l *Ledger) StartRun(ctx context.Context, command, endpoint string, dryRun bool) (string, error) {
	id := uuid.NewString()
	query := l.qb.Insert(runsTable).
		Columns("id", "command", "endpoint", "dry_run", "started_at").
		Values(id, command, endpoint, boolToInt(dryRun), l.now())

	if err := l.exec(ctx, query); err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return id, nil
}

func (l *Ledger) FinishRun(ctx context.Context, runID string, farmsCreated, callsOK, callsFailed int) error {
	query := l.qb.Update(runsTable).
		Set("finished_at", l.now()).
		Set("farms_created", farmsCreated).
		Set("calls_ok", callsOK).
		Set("calls_failed", callsFailed).
		Where(squirrel.Eq{"id": runID})

	if err := l.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

func (l *Ledger) RecordFarm(ctx context.Context, f Farm) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = l.now()
	}
	query := l.qb.Insert(farmsTable).
		Columns("run_id", "farm_id", "name", "share_price", "created_at").
		Values(f.RunID, f.FarmID, f.Name, int64(f.SharePrice), f.CreatedAt)

	if err := l.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to record farm %s: %w", f.FarmID, err)
	}
	return nil
}

func (l *Ledger) RecordCall(ctx context.Context, c Call) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = l.now()
	}
	var errText any
	if c.Error != "" {
		errText = c.Error
	}
	query := l.qb.Insert(callsTable).
		Columns("id", "run_id", "seq", "method", "target", "amount", "outcome", "error", "created_at").
		Values(uuid.NewString(), c.RunID, c.Seq, c.Method, c.Target, int64(c.Amount), c.Outcome, errText, c.CreatedAt)

	if err := l.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to record %s call: %w", c.Method, err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all of them.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := l.runSelect().OrderBy("started_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return l.queryRuns(ctx, query)
}

// GetRun looks a run up by id. "latest" resolves to the most recent run.
func (l *Ledger) GetRun(ctx context.Context, id string) (*Run, error) {
	query := l.runSelect()
	if id == "latest" || id == "" {
		query = query.OrderBy("started_at DESC").Limit(1)
	} else {
		query = query.Where(squirrel.Eq{"id": id})
	}

	runs, err := l.queryRuns(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return &runs[0], nil
}

func (l *Ledger) ListFarms(ctx context.Context, runID string) ([]Farm, error) {
	query := l.qb.Select("run_id", "farm_id", "name", "share_price", "created_at").
		From(farmsTable).
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("created_at", "farm_id")

	rows, err := l.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var farms []Farm
	for rows.Next() {
		var f Farm
		var price int64
		if err := rows.Scan(&f.RunID, &f.FarmID, &f.Name, &price, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan farm: %w", err)
		}
		f.SharePrice = uint64(price)
		farms = append(farms, f)
	}
	return farms, rows.Err()
}

func (l *Ledger) ListCalls(ctx context.Context, runID string) ([]Call, error) {
	query := l.qb.Select("run_id", "seq", "method", "target", "amount", "outcome", "error", "created_at").
		From(callsTable).
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("seq")

	rows, err := l.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		var c Call
		var amount int64
		var errText sql.NullString
		if err := rows.Scan(&c.RunID, &c.Seq, &c.Method, &c.Target, &amount, &c.Outcome, &errText, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		c.Amount = uint64(amount)
		c.Error = errText.String
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

func (l *Ledger) runSelect() squirrel.SelectBuilder {
	return l.qb.Select("id", "command", "endpoint", "dry_run", "started_at", "finished_at",
		"farms_created", "calls_ok", "calls_failed").From(runsTable)
}

func (l *Ledger) queryRuns(ctx context.Context, query squirrel.SelectBuilder) ([]Run, error) {
	rows, err := l.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var dryRun int
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Command, &r.Endpoint, &dryRun, &r.StartedAt, &finished,
			&r.FarmsCreated, &r.CallsOK, &r.CallsFailed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.DryRun = dryRun != 0
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (l *Ledger) exec(ctx context.Context, query squirrel.Sqlizer) error {
	stmt, args, err := query.ToSql()
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx, stmt, args...)
	return err
}

func (l *Ledger) query(ctx context.Context, query squirrel.Sqlizer) (*sql.Rows, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	return l.db.QueryContext(ctx, stmt, args...)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
