package evtimer

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	timers prometheus.Gauge

	added,
	cancelled,
	fired,
	expirations,
	callbackPanics prometheus.Counter

	callbackDuration prometheus.Histogram
}

func newCounterMetric(namespace, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

// newMetrics creates the collectors and registers them when registerer is
// not nil.
func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		timers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timers",
			Help:      "Number of registered timers",
		}),
		added:          newCounterMetric(namespace, "added", "# of timers added"),
		cancelled:      newCounterMetric(namespace, "cancelled", "# of timers cancelled before their last expiration"),
		fired:          newCounterMetric(namespace, "fired", "# of callbacks invoked"),
		expirations:    newCounterMetric(namespace, "expirations", "# of expirations drained, including coalesced ticks"),
		callbackPanics: newCounterMetric(namespace, "callback_panics", "# of callbacks that panicked"),
		callbackDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "callback_duration",
			Help:      "Time spent in timer callbacks (s)",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if registerer == nil {
		return m, nil
	}
	return m, errors.Join(
		registerer.Register(m.timers),
		registerer.Register(m.added),
		registerer.Register(m.cancelled),
		registerer.Register(m.fired),
		registerer.Register(m.expirations),
		registerer.Register(m.callbackPanics),
		registerer.Register(m.callbackDuration),
	)
}
