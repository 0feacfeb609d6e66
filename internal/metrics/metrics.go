package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hellmusic"

var (
	once sync.Once

	storeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Document store operations by backend, operation and result.",
		},
		[]string{"backend", "op", "result"},
	)

	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Document store operation latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	activeVoiceChats = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_voice_chats",
			Help:      "Voice chats the bot currently takes part in.",
		},
	)

	runtimeFailovers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runtime_failovers_total",
			Help:      "Switches from the primary runtime repository to the fallback.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(storeOperations, storeDuration, activeVoiceChats, runtimeFailovers)
	})
}

// ObserveStoreOp records one store call started at start.
func ObserveStoreOp(backend, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperations.WithLabelValues(backend, op, result).Inc()
	storeDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}

func SetActiveVoiceChats(n int) {
	activeVoiceChats.Set(float64(n))
}

func IncRuntimeFailover() {
	runtimeFailovers.Inc()
}
