package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we will tightly couple to the prometheus collector type
	// the go otel metrics sdk also has a prometheus adapter that implements this interface.
	prometheus.Collector
}

// Metrics is the set of observers the bot reports to.
// Observers take labels as documented on each field.
type Metrics struct {
	// CommandCount counts command invocations. Labels: command name.
	CommandCount Observer
	// CommandLatency is the time from receiving an invocation to the handler
	// returning, in seconds. Labels: command name.
	CommandLatency Observer
	// RateLimitedCount counts invocations dropped by channel rate limits.
	RateLimitedCount Observer
	// WeatherLatency is the duration of weather lookups in seconds.
	// Labels: outcome, one of ok, not_found, error.
	WeatherLatency Observer
	// ReloadCount counts individual plugin reloads. Labels: plugin name.
	ReloadCount Observer
}

func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CommandCount,
		m.CommandLatency,
		m.RateLimitedCount,
		m.WeatherLatency,
		m.ReloadCount,
	}
}

// Discard returns a Metrics whose observers record into unregistered
// collectors. It is useful for tests and for tools that do not serve metrics.
func Discard() *Metrics {
	return &Metrics{
		CommandCount:     NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{Name: "command_count"}, []string{"command"})),
		CommandLatency:   NewPromObserverVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "command_latency"}, []string{"command"})),
		RateLimitedCount: NewPromCounter(prometheus.NewCounter(prometheus.CounterOpts{Name: "rate_limited"})),
		WeatherLatency:   NewPromObserverVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "weather_latency"}, []string{"outcome"})),
		ReloadCount:      NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{Name: "reload_count"}, []string{"plugin"})),
	}
}
