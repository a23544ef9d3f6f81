package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HostMetrics tracks contract execution on the host.
type HostMetrics struct {
	txs         *prometheus.CounterVec
	txLatency   *prometheus.HistogramVec
	blockHeight prometheus.Gauge
	subCalls    *prometheus.CounterVec
	rpcRequests *prometheus.CounterVec
}

var (
	hostOnce     sync.Once
	hostRegistry *HostMetrics
)

// Host returns the lazily registered host metrics.
func Host() *HostMetrics {
	hostOnce.Do(func() {
		hostRegistry = &HostMetrics{
			txs: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftfi",
				Subsystem: "host",
				Name:      "txs_total",
				Help:      "Executed transactions segmented by contract code, action and outcome.",
			}, []string{"contract", "action", "status"}),
			txLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "nftfi",
				Subsystem: "host",
				Name:      "tx_duration_seconds",
				Help:      "Transaction execution latency by contract code.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			}, []string{"contract"}),
			blockHeight: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "nftfi",
				Subsystem: "host",
				Name:      "block_height",
				Help:      "Height of the latest produced block.",
			}),
			subCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftfi",
				Subsystem: "host",
				Name:      "messages_dispatched_total",
				Help:      "Outbound contract messages dispatched by kind.",
			}, []string{"kind"}),
			rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftfi",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
		}
		prometheus.MustRegister(
			hostRegistry.txs,
			hostRegistry.txLatency,
			hostRegistry.blockHeight,
			hostRegistry.subCalls,
			hostRegistry.rpcRequests,
		)
	})
	return hostRegistry
}

func label(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

// ObserveTx records one finished transaction.
func (m *HostMetrics) ObserveTx(contract, action string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	m.txs.WithLabelValues(label(contract), label(action), status).Inc()
	m.txLatency.WithLabelValues(label(contract)).Observe(elapsed.Seconds())
}

func (m *HostMetrics) SetBlockHeight(height uint64) {
	if m == nil {
		return
	}
	m.blockHeight.Set(float64(height))
}

func (m *HostMetrics) ObserveMessage(kind string) {
	if m == nil {
		return
	}
	m.subCalls.WithLabelValues(label(kind)).Inc()
}

func (m *HostMetrics) ObserveRPC(method, outcome string) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(label(method), label(outcome)).Inc()
}
