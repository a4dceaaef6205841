package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCall(t *testing.T) {
	r := New()
	r.ObserveCall("createFarm", "ok", 10*time.Millisecond)
	r.ObserveCall("createFarm", "ok", 12*time.Millisecond)
	r.ObserveCall("investInFarm", "rejected", time.Millisecond)
	r.FarmCreated()

	if got := testutil.ToFloat64(r.CallsTotal.WithLabelValues("createFarm", "ok")); got != 2 {
		t.Fatalf("expected 2 createFarm calls, got %v", got)
	}
	if got := testutil.ToFloat64(r.CallsTotal.WithLabelValues("investInFarm", "rejected")); got != 1 {
		t.Fatalf("expected 1 rejected investment, got %v", got)
	}
	if got := testutil.ToFloat64(r.FarmsCreated); got != 1 {
		t.Fatalf("expected 1 farm created, got %v", got)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveCall("createFarm", "ok", time.Second)
	r.FarmCreated()
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveCall("icrc1_transfer", "transport", time.Millisecond)

	path := filepath.Join(t.TempDir(), "farmseed.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `farmseed_backend_calls_total{method="icrc1_transfer",outcome="transport"} 1`) {
		t.Fatalf("metric missing from textfile:\n%s", data)
	}
}
