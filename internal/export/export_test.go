package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Lumos-Labs-HQ/farmseed/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type stubSource struct {
	run   *ledger.Run
	farms []ledger.Farm
	calls []ledger.Call
}

func (s stubSource) GetRun(_ context.Context, id string) (*ledger.Run, error) {
	if s.run == nil || (id != "latest" && id != s.run.ID) {
		return nil, ledger.ErrRunNotFound
	}
	return s.run, nil
}

func (s stubSource) ListFarms(context.Context, string) ([]ledger.Farm, error) { return s.farms, nil }
func (s stubSource) ListCalls(context.Context, string) ([]ledger.Call, error) { return s.calls, nil }

func testSource() stubSource {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(time.Minute)
	return stubSource{
		run: &ledger.Run{ID: "3f0c1a2b-0000-4000-8000-000000000000", Command: "seed", Endpoint: "http://127.0.0.1:4943",
			StartedAt: started, FinishedAt: &finished, FarmsCreated: 1, CallsOK: 2, CallsFailed: 1},
		farms: []ledger.Farm{{FarmID: "1", Name: "Green Valley Organic Farm", SharePrice: 500_000_000}},
		calls: []ledger.Call{
			{Seq: 1, Method: "createFarm", Target: "Green Valley Organic Farm", Outcome: "ok"},
			{Seq: 2, Method: "investInFarm", Target: "1", Amount: 5_000_000_000_000, Outcome: "ok"},
			{Seq: 3, Method: "createMarketOrder", Target: "1", Amount: 475_000_000, Outcome: "rejected", Error: "createMarketOrder rejected: InsufficientShares"},
		},
	}
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := PerformExport(context.Background(), testSource(), "latest", dir, "json")
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, "2026-03-01T12:01:00Z", doc.Run.FinishedAt)
	require.Len(t, doc.Farms, 1)
	assert.Equal(t, "1", doc.Farms[0].ID)
	require.Len(t, doc.Calls, 3)
	assert.Equal(t, "rejected", doc.Calls[2].Outcome)
}

func TestExportYAML(t *testing.T) {
	path, err := PerformExport(context.Background(), testSource(), "3f0c1a2b-0000-4000-8000-000000000000", t.TempDir(), "yaml")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "seed", doc.Run.Command)
	assert.Equal(t, uint64(500_000_000), doc.Farms[0].SharePrice)
}

func TestExportCSV(t *testing.T) {
	dir, err := PerformExport(context.Background(), testSource(), "latest", t.TempDir(), "csv")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "calls.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"seq", "method", "target", "amount", "outcome", "error"}, records[0])
	assert.Equal(t, "5000000000000", records[2][3])

	_, err = os.Stat(filepath.Join(dir, "farms.csv"))
	assert.NoError(t, err)
}

func TestExportErrors(t *testing.T) {
	_, err := PerformExport(context.Background(), testSource(), "latest", t.TempDir(), "xml")
	assert.Error(t, err)

	_, err = PerformExport(context.Background(), stubSource{}, "latest", t.TempDir(), "json")
	assert.ErrorIs(t, err, ledger.ErrRunNotFound)
}
