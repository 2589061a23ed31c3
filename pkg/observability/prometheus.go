package observability

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a dedicated Prometheus registry.
// Collectors are created on first use; the label set of a metric is fixed by
// the tags of its first observation.
type PrometheusMetrics struct {
	namespace  string
	registry   *prometheus.Registry
	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics creates a metrics sink with its own registry.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	return &PrometheusMetrics{
		namespace:  namespace,
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Registry exposes the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	keys, values := splitTags(tags)

	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      name,
		}, keys)
		m.registry.MustRegister(vec)
		m.counters[name] = vec
	}
	m.mu.Unlock()

	counter, err := vec.GetMetricWithLabelValues(values...)
	if err != nil {
		return
	}
	counter.Add(float64(value))
}

func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	keys, values := splitTags(tags)

	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      name,
			Buckets:   prometheus.DefBuckets,
		}, keys)
		m.registry.MustRegister(vec)
		m.histograms[name] = vec
	}
	m.mu.Unlock()

	observer, err := vec.GetMetricWithLabelValues(values...)
	if err != nil {
		return
	}
	observer.Observe(duration.Seconds())
}

func splitTags(tags []Tag) ([]string, []string) {
	sorted := make([]Tag, len(tags))
	copy(sorted, tags)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	keys := make([]string, len(sorted))
	values := make([]string, len(sorted))
	for i, t := range sorted {
		keys[i] = t.Key
		values[i] = t.Value
	}
	return keys, values
}
