package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/canviz/candbc/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counters
var (
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_decoded_total",
		Help: "Total CAN frames matched against the loaded DBC and decoded.",
	})
	FramesUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_unmatched_total",
		Help: "Total CAN frames with no matching message definition (or no DBC loaded).",
	})
	SignalsDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signals_decoded_total",
		Help: "Total signals successfully extracted and scaled.",
	})
	SignalExtractFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_extract_failures_total",
		Help: "Total signals omitted because their bit range fell outside the payload.",
	})
	LogRowsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "log_rows_loaded_total",
		Help: "Total frames loaded from CSV logs.",
	})
	SimFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_frames_total",
		Help: "Total synthetic frames generated.",
	})
	SinkWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_writes_total",
		Help: "Total decoded signals handed to a sink, by sink kind.",
	}, []string{"sink"})
	SinkDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_drops_total",
		Help: "Total decoded signals dropped because a sink queue was full, by sink kind.",
	}, []string{"sink"})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})
	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Error label constants (stable label values to bound cardinality)
const (
	ErrDBCLoad     = "dbc_load"
	ErrLogLoad     = "log_load"
	ErrLogWrite    = "log_write"
	ErrSinkConnect = "sink_connect"
	ErrSinkFlush   = "sink_flush"
	ErrChartRender = "chart_render"
)

// Sink label constants
const (
	SinkLog        = "log"
	SinkClickHouse = "clickhouse"
	SinkInflux     = "influxdb"
)

// StartHTTP serves Prometheus metrics at /metrics on the given address,
// plus a /ready endpoint backed by the registered readiness function.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters for easy logging (avoid Prometheus scraping in-process)
var (
	localFramesDecoded   uint64
	localFramesUnmatched uint64
	localSignalsDecoded  uint64
	localExtractFailures uint64
	localLogRows         uint64
	localSimFrames       uint64
	localSinkWrites      uint64
	localSinkDrops       uint64
	localErrors          uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	FramesDecoded   uint64
	FramesUnmatched uint64
	SignalsDecoded  uint64
	ExtractFailures uint64
	LogRows         uint64
	SimFrames       uint64
	SinkWrites      uint64 // sum across sink labels
	SinkDrops       uint64
	Errors          uint64 // sum across error labels
}

func Snap() Snapshot {
	return Snapshot{
		FramesDecoded:   atomic.LoadUint64(&localFramesDecoded),
		FramesUnmatched: atomic.LoadUint64(&localFramesUnmatched),
		SignalsDecoded:  atomic.LoadUint64(&localSignalsDecoded),
		ExtractFailures: atomic.LoadUint64(&localExtractFailures),
		LogRows:         atomic.LoadUint64(&localLogRows),
		SimFrames:       atomic.LoadUint64(&localSimFrames),
		SinkWrites:      atomic.LoadUint64(&localSinkWrites),
		SinkDrops:       atomic.LoadUint64(&localSinkDrops),
		Errors:          atomic.LoadUint64(&localErrors),
	}
}

// Wrapper helpers to keep call sites simple.
func IncFrameDecoded() {
	FramesDecoded.Inc()
	atomic.AddUint64(&localFramesDecoded, 1)
}

func IncFrameUnmatched() {
	FramesUnmatched.Inc()
	atomic.AddUint64(&localFramesUnmatched, 1)
}

// AddSignalsDecoded records n successfully decoded signals.
func AddSignalsDecoded(n int) {
	SignalsDecoded.Add(float64(n))
	atomic.AddUint64(&localSignalsDecoded, uint64(n))
}

func IncExtractFailure() {
	SignalExtractFailures.Inc()
	atomic.AddUint64(&localExtractFailures, 1)
}

func AddLogRows(n int) {
	LogRowsLoaded.Add(float64(n))
	atomic.AddUint64(&localLogRows, uint64(n))
}

func IncSimFrame() {
	SimFrames.Inc()
	atomic.AddUint64(&localSimFrames, 1)
}

func IncSinkWrite(sink string) {
	SinkWrites.WithLabelValues(sink).Inc()
	atomic.AddUint64(&localSinkWrites, 1)
}

func IncSinkDrop(sink string) {
	SinkDrops.WithLabelValues(sink).Inc()
	atomic.AddUint64(&localSinkDrops, 1)
}

func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	// Pre-register common error label series so first error does not log a registration latency.
	for _, lbl := range []string{
		ErrDBCLoad, ErrLogLoad, ErrLogWrite,
		ErrSinkConnect, ErrSinkFlush, ErrChartRender,
	} {
		Errors.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil { // if not set yet, treat as ready so metrics endpoint doesn't flap
		return true
	}
	return fn()
}
