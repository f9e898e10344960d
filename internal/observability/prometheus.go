package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var msBuckets = []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3200}

// Prometheus registers its collectors on the given registerer, so tests can
// use a private registry instead of the global one.
type Prometheus struct {
	lookups     *prometheus.HistogramVec
	finalize    *prometheus.HistogramVec
	httpReqs    *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	kafka       *prometheus.HistogramVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		lookups: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "order_lookup_duration_ms",
			Help:    "Order lookup duration in ms by source",
			Buckets: msBuckets,
		}, []string{"source"}),
		finalize: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "order_finalize_duration_ms",
			Help:    "Order finalization duration in ms by outcome",
			Buckets: msBuckets,
		}, []string{"outcome"}),
		httpReqs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDur: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: msBuckets,
		}, []string{"method", "path"}),
		kafka: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_message_duration_ms",
			Help:    "Kafka message processing duration in ms",
			Buckets: msBuckets,
		}, []string{"ok"}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "order_cache_hits_total",
			Help: "Order cache hits",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "order_cache_misses_total",
			Help: "Order cache misses",
		}),
	}
}

func (p *Prometheus) ObserveLookup(source string, cacheMs, dbMs float64) {
	p.lookups.WithLabelValues(source).Observe(cacheMs + dbMs)
}

func (p *Prometheus) ObserveFinalize(outcome string, durMs float64) {
	p.finalize.WithLabelValues(outcome).Observe(durMs)
}

func (p *Prometheus) ObserveHTTP(method, route string, status int, durMs float64) {
	p.httpReqs.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDur.WithLabelValues(method, route).Observe(durMs)
}

func (p *Prometheus) ObserveKafka(processMs float64, ok bool) {
	p.kafka.WithLabelValues(strconv.FormatBool(ok)).Observe(processMs)
}

func (p *Prometheus) IncCacheHit()  { p.cacheHits.Inc() }
func (p *Prometheus) IncCacheMiss() { p.cacheMisses.Inc() }
