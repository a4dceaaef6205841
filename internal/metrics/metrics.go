package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farmseed"

// Recorder counts backend calls for one process. It owns its registry so runs and tests
// never leak series into each other.
type Recorder struct {
	Registry     *prometheus.Registry
	CallsTotal   *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
	FarmsCreated prometheus.Counter
}

func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "backend_calls_total", Help: "Backend calls issued, by method and outcome"},
			[]string{"method", "outcome"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "backend_call_duration_seconds", Help: "Backend call latency", Buckets: prometheus.DefBuckets},
			[]string{"method"},
		),
		FarmsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "farms_created_total", Help: "Farms successfully created"},
		),
	}
	r.Registry.MustRegister(r.CallsTotal, r.CallDuration, r.FarmsCreated)
	return r
}

// ObserveCall records one finished call. outcome is "ok", "rejected" or "transport".
func (r *Recorder) ObserveCall(method, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.CallsTotal.WithLabelValues(method, outcome).Inc()
	r.CallDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (r *Recorder) FarmCreated() {
	if r == nil {
		return
	}
	r.FarmsCreated.Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
