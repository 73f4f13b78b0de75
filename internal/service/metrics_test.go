package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveOperation("login", "authenticated")
	m.ObserveOperation("login", "authenticated")
	m.ObserveOperation("login", "incorrect_credentials")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("login", "authenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("login", "incorrect_credentials")))
}

func TestMetrics_ObserveHash(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveHash("hash", 20*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["auth_password_hash_duration_seconds"])
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("signup", "created")
	m.ObserveHash("verify", time.Millisecond)
}

func newTestRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func counterValue(m *Metrics, operation, outcome string) float64 {
	return testutil.ToFloat64(m.operations.WithLabelValues(operation, outcome))
}
