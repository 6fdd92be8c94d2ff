package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zephyrtronium/a2/metrics"
)

func TestCounterVec(t *testing.T) {
	v := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "x"}, []string{"command"})
	m := metrics.NewPromCounterVec(v)
	m.Observe(1, "ping")
	m.Observe(1, "ping")
	m.Observe(1, "echo")
	if got := testutil.ToFloat64(v.WithLabelValues("ping")); got != 2 {
		t.Errorf("wrong ping count: want 2, got %v", got)
	}
	if got := testutil.ToFloat64(v.WithLabelValues("echo")); got != 1 {
		t.Errorf("wrong echo count: want 1, got %v", got)
	}
}

func TestDiscardRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	for _, c := range metrics.Discard().Collectors() {
		if err := reg.Register(c); err != nil {
			t.Errorf("couldn't register %v: %v", c, err)
		}
	}
}
