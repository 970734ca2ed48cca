package prom

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	namespace = "stake_ledger"

	pipelineSubsystem = "pipeline"
	compareSubsystem  = "compare"
)

var (
	metrics bool

	logsFetched     prometheus.Counter
	eventsDecoded   *prometheus.CounterVec
	decodeFailures  prometheus.Counter
	eventsAppended  *prometheus.CounterVec
	duplicateEvents prometheus.Counter
	lastBlock       prometheus.Gauge
	compareMismatch *prometheus.CounterVec
)

// Init registers the collectors. Until it is called every helper is a no-op.
func Init() {
	metrics = true

	logsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: pipelineSubsystem,
		Name:      "logs_fetched_total",
		Help:      "Number of raw logs written",
	})

	eventsDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: pipelineSubsystem,
		Name:      "events_decoded_total",
		Help:      "Number of decoded events by table",
	}, []string{"table"})

	decodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: pipelineSubsystem,
		Name:      "decode_failures_total",
		Help:      "Number of logs that failed to decode",
	})

	eventsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: pipelineSubsystem,
		Name:      "events_appended_total",
		Help:      "Number of events appended to the ledger by table",
	}, []string{"table"})

	duplicateEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: pipelineSubsystem,
		Name:      "duplicate_events_total",
		Help:      "Number of events skipped because their log was already ingested",
	})

	lastBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: pipelineSubsystem,
		Name:      "last_processed_block",
		Help:      "Last block fully processed by the runner",
	})

	compareMismatch = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: compareSubsystem,
		Name:      "mismatches_total",
		Help:      "Number of comparison mismatches by table and kind",
	}, []string{"table", "kind"})
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}

func AddLogsFetched(n int) {
	if metrics {
		logsFetched.Add(float64(n))
	}
}

func IncEventDecoded(table string) {
	if metrics {
		eventsDecoded.WithLabelValues(table).Inc()
	}
}

func IncDecodeFailure() {
	if metrics {
		decodeFailures.Inc()
	}
}

func IncEventAppended(table string) {
	if metrics {
		eventsAppended.WithLabelValues(table).Inc()
	}
}

func AddDuplicates(n int) {
	if metrics {
		duplicateEvents.Add(float64(n))
	}
}

// SetLastBlock records the runner checkpoint.
func SetLastBlock(block uint64) {
	if metrics {
		lastBlock.Set(float64(block))
	}
}

func IncCompareMismatch(table, kind string) {
	if metrics {
		compareMismatch.WithLabelValues(table, kind).Inc()
	}
}
