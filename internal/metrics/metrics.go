// Package metrics holds the Prometheus instruments of deckbind. All methods
// are safe on a nil *Metrics so callers can run without metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for deckbind
type Metrics struct {
	RendersTotal          *prometheus.CounterVec
	RenderDurationSeconds *prometheus.HistogramVec
	TemplateFallbacks     *prometheus.CounterVec
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
	DecksStoredTotal      prometheus.Counter
	HTTPRequestsTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deckbind_renders_total",
				Help: "Total number of deck renders by output format and status",
			},
			[]string{"format", "status"},
		),
		RenderDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deckbind_render_duration_seconds",
				Help:    "Deck render duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		TemplateFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deckbind_template_fallbacks_total",
				Help: "Pages rendered with the default template because no template matched",
			},
			[]string{"page_type"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "deckbind_cache_hits_total",
				Help: "Scene cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "deckbind_cache_misses_total",
				Help: "Scene cache misses",
			},
		),
		DecksStoredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "deckbind_decks_stored_total",
				Help: "Total number of decks stored",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deckbind_http_requests_total",
				Help: "HTTP requests by method, route pattern and status",
			},
			[]string{"method", "route", "status"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.RendersTotal,
		m.RenderDurationSeconds,
		m.TemplateFallbacks,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DecksStoredTotal,
		m.HTTPRequestsTotal,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRender records one render of a deck
func (m *Metrics) ObserveRender(format string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RendersTotal.WithLabelValues(format, status).Inc()
	m.RenderDurationSeconds.WithLabelValues(format).Observe(d.Seconds())
}

// IncTemplateFallback counts a page that fell back to the default template
func (m *Metrics) IncTemplateFallback(pageType string) {
	if m == nil {
		return
	}
	m.TemplateFallbacks.WithLabelValues(pageType).Inc()
}

// IncCacheHit increments the scene cache hit counter
func (m *Metrics) IncCacheHit() {
	if m != nil {
		m.CacheHitsTotal.Inc()
	}
}

// IncCacheMiss increments the scene cache miss counter
func (m *Metrics) IncCacheMiss() {
	if m != nil {
		m.CacheMissesTotal.Inc()
	}
}

// IncDecksStored increments the stored deck counter
func (m *Metrics) IncDecksStored() {
	if m != nil {
		m.DecksStoredTotal.Inc()
	}
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Middleware counts requests by chi route pattern to keep cardinality low
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
	})
}
