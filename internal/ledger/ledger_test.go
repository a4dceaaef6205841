package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	url := "sqlite://" + filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(context.Background(), "sqlite", url)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return l
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	runID, err := l.StartRun(ctx, "seed", "http://127.0.0.1:4943", false)
	require.NoError(t, err)
	require.Len(t, runID, 36)

	run, err := l.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "seed", run.Command)
	assert.False(t, run.DryRun)
	assert.Nil(t, run.FinishedAt)

	require.NoError(t, l.FinishRun(ctx, runID, 4, 36, 0))
	run, err = l.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run.FinishedAt)
	assert.True(t, run.FinishedAt.After(run.StartedAt))
	assert.Equal(t, 4, run.FarmsCreated)
	assert.Equal(t, 36, run.CallsOK)
}

func TestFarmsAndCalls(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	runID, err := l.StartRun(ctx, "all", "http://127.0.0.1:4943", true)
	require.NoError(t, err)

	require.NoError(t, l.RecordFarm(ctx, Farm{RunID: runID, FarmID: "1", Name: "Green Valley", SharePrice: 500_000_000}))
	require.NoError(t, l.RecordFarm(ctx, Farm{RunID: runID, FarmID: "2", Name: "Sunrise Grain", SharePrice: 1_000_000_000}))
	require.NoError(t, l.RecordCall(ctx, Call{RunID: runID, Seq: 1, Method: "createFarm", Target: "Green Valley", Outcome: "ok"}))
	require.NoError(t, l.RecordCall(ctx, Call{RunID: runID, Seq: 2, Method: "investInFarm", Target: "1", Amount: 100_000_000_000, Outcome: "rejected", Error: "InsufficientFunds"}))

	farms, err := l.ListFarms(ctx, runID)
	require.NoError(t, err)
	require.Len(t, farms, 2)
	assert.Equal(t, "1", farms[0].FarmID)
	assert.Equal(t, uint64(1_000_000_000), farms[1].SharePrice)

	calls, err := l.ListCalls(ctx, runID)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Empty(t, calls[0].Error)
	assert.Equal(t, "InsufficientFunds", calls[1].Error)
	assert.Equal(t, uint64(100_000_000_000), calls[1].Amount)

	run, err := l.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.True(t, run.DryRun)
}

func TestDuplicateFarmInRunFails(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	runID, err := l.StartRun(ctx, "seed", "http://localhost", false)
	require.NoError(t, err)
	require.NoError(t, l.RecordFarm(ctx, Farm{RunID: runID, FarmID: "1", Name: "A"}))
	assert.Error(t, l.RecordFarm(ctx, Farm{RunID: runID, FarmID: "1", Name: "A"}))
}

func TestListRunsAndLatest(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	_, err := l.GetRun(ctx, "latest")
	assert.ErrorIs(t, err, ErrRunNotFound)

	first, err := l.StartRun(ctx, "seed", "http://localhost", false)
	require.NoError(t, err)
	second, err := l.StartRun(ctx, "investors", "http://localhost", false)
	require.NoError(t, err)

	runs, err := l.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)

	runs, err = l.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	latest, err := l.GetRun(ctx, "latest")
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)

	_, err = l.GetRun(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestDriverFor(t *testing.T) {
	driver, dsn, _, err := driverFor("postgres", "postgres://u:p@localhost:5432/seed")
	require.NoError(t, err)
	assert.Equal(t, "pgx", driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/seed", dsn)

	driver, dsn, _, err = driverFor("mysql", "mysql://u:p@localhost:3306/seed")
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.Contains(t, dsn, "tcp(localhost:3306)/seed")
	assert.Contains(t, dsn, "parseTime=true")

	driver, dsn, _, err = driverFor("sqlite", "sqlite://./farmseed.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", driver)
	assert.Equal(t, "file:./farmseed.db?_journal_mode=WAL&_busy_timeout=5000", dsn)

	_, _, _, err = driverFor("oracle", "x")
	assert.Error(t, err)
}
