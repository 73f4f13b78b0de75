package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa los collectors del servicio. Un *Metrics nil no registra nada.
type Metrics struct {
	operations   *prometheus.CounterVec
	hashDuration *prometheus.HistogramVec
}

// NewMetrics crea y registra los collectors en reg. Panics si ya estaban
// registrados (convencion de prometheus).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_operations_total",
				Help: "Total number of auth operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		hashDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_password_hash_duration_seconds",
				Help:    "Password hash and verify duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.operations, m.hashDuration)
	return m
}

func (m *Metrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveHash tiene la firma que espera Argon2Hasher.WithObserver.
func (m *Metrics) ObserveHash(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.hashDuration.WithLabelValues(op).Observe(d.Seconds())
}
