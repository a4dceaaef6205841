package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway answers every backend method with a plausible ok result.
type fakeGateway struct {
	mu      sync.Mutex
	methods []string
	farms   int
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	io.Copy(io.Discard, r.Body)
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	g.mu.Lock()
	g.methods = append(g.methods, method)
	var body string
	switch method {
	case "createFarm":
		g.farms++
		body = fmt.Sprintf(`{"ok": {"id": %d, "name": "farm", "sharePrice": 100000000}}`, g.farms)
	case "investInFarm":
		body = `{"ok": {"farmId": "1", "amount": 1, "sharesBought": 1, "transactionId": "tx"}}`
	case "createMarketOrder":
		body = `{"ok": "order-1"}`
	case "createProfile":
		body = `{"ok": {"principal": "2vxsx-fae", "name": "x", "role": {"Investor": null}}}`
	case "icrc1_transfer":
		body = `{"Ok": 7}`
	default:
		body = `{"err": "unknown method"}`
	}
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func (g *fakeGateway) count(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, m := range g.methods {
		if m == method {
			n++
		}
	}
	return n
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAllCommandAgainstGateway(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FARMSEED_LEDGER_URL", "sqlite://"+filepath.Join(t.TempDir(), "ledger.db"))

	g := &fakeGateway{}
	srv := httptest.NewServer(g)
	defer srv.Close()

	out, err := runCommand(t, "all", "--endpoint", srv.URL)
	require.NoError(t, err)

	assert.Equal(t, 4, g.count("createFarm"))
	assert.Equal(t, 16, g.count("investInFarm"))
	assert.Equal(t, 16, g.count("createMarketOrder"))
	assert.Equal(t, 2, g.count("createProfile"))
	assert.Equal(t, 2, g.count("icrc1_transfer"))
	assert.Contains(t, out, "4 of 4 farms created")
	assert.Contains(t, out, "Farm IDs for testing")

	_, err = runCommand(t, "export", "--json")
	require.NoError(t, err)
	entries, err := os.ReadDir("exports")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join("exports", entries[0].Name()))
	require.NoError(t, err)
	var doc struct {
		Run struct {
			Command      string `json:"command"`
			FarmsCreated int    `json:"farms_created"`
			CallsOK      int    `json:"calls_ok"`
		} `json:"run"`
		Farms []json.RawMessage `json:"farms"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "all", doc.Run.Command)
	assert.Equal(t, 4, doc.Run.FarmsCreated)
	assert.Equal(t, 40, doc.Run.CallsOK)
	assert.Len(t, doc.Farms, 4)
}

func TestHandleEnvFile(t *testing.T) {
	chdir(t, t.TempDir())

	require.NoError(t, handleEnvFile("FARMSEED_LEDGER_URL=sqlite://./farmseed.db\n"))
	data, err := os.ReadFile(".env")
	require.NoError(t, err)
	assert.Equal(t, "FARMSEED_LEDGER_URL=sqlite://./farmseed.db\n", string(data))

	require.NoError(t, os.WriteFile(".env", []byte("OTHER=1"), 0644))
	require.NoError(t, handleEnvFile("FARMSEED_LEDGER_URL=x\n"))
	data, err = os.ReadFile(".env")
	require.NoError(t, err)
	assert.Equal(t, "OTHER=1\n\n# Added by farmseed\nFARMSEED_LEDGER_URL=x\n", string(data))

	// Already present: left alone.
	require.NoError(t, handleEnvFile("FARMSEED_LEDGER_URL=y\n"))
	again, err := os.ReadFile(".env")
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestInitializeProject(t *testing.T) {
	chdir(t, t.TempDir())
	viper.Reset()

	require.NoError(t, initializeProject("postgresql", false, true))
	assert.FileExists(t, "farmseed.config.json")
	assert.FileExists(t, "dataset.yaml")
	assert.Error(t, initializeProject("postgresql", false, false))
	assert.NoError(t, initializeProject("sqlite", true, false))
}

func TestIsLocalEndpoint(t *testing.T) {
	assert.True(t, isLocalEndpoint("http://127.0.0.1:4943"))
	assert.True(t, isLocalEndpoint("http://localhost:8080"))
	assert.True(t, isLocalEndpoint("http://backend.localhost:4943"))
	assert.False(t, isLocalEndpoint("https://ic0.app"))
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
