package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver exports cache events as Prometheus counters.
//
// Keys are not used as labels (unbounded cardinality); the cache name is.
type PrometheusObserver struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions *prometheus.CounterVec
}

// NewPrometheusObserver registers the cache counters on reg under the given cache name.
func NewPrometheusObserver(reg prometheus.Registerer, name string) *PrometheusObserver {
	labels := prometheus.Labels{"cache": name}
	o := &PrometheusObserver{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "cache_hits_total",
			Help:        "Total number of cache lookups that found a live entry",
			ConstLabels: labels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "cache_misses_total",
			Help:        "Total number of cache lookups that found no live entry",
			ConstLabels: labels,
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cache_evictions_total",
			Help:        "Total number of cache entries removed by expiry or capacity pressure",
			ConstLabels: labels,
		}, []string{"reason"}),
	}
	reg.MustRegister(o.hits, o.misses, o.evictions)
	return o
}

// OnHit implements Observer.
func (o *PrometheusObserver) OnHit(string) { o.hits.Inc() }

// OnMiss implements Observer.
func (o *PrometheusObserver) OnMiss(string) { o.misses.Inc() }

// OnEviction implements Observer.
func (o *PrometheusObserver) OnEviction(_ string, reason string) {
	o.evictions.WithLabelValues(reason).Inc()
}
