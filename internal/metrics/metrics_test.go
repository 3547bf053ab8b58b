package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func TestNew(t *testing.T) {
	m := New()
	if m.Registry() == nil {
		t.Fatal("Registry() returned nil")
	}

	m.ObserveRender("svg", nil, 10*time.Millisecond)
	m.ObserveRender("svg", errors.New("boom"), time.Millisecond)
	m.ObserveRender("png", nil, time.Millisecond)
	m.IncTemplateFallback("outline")
	m.IncCacheHit()
	m.IncCacheMiss()
	m.IncCacheMiss()
	m.IncDecksStored()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"svg ok", counterValue(t, m.RendersTotal.WithLabelValues("svg", "ok")), 1},
		{"svg error", counterValue(t, m.RendersTotal.WithLabelValues("svg", "error")), 1},
		{"png ok", counterValue(t, m.RendersTotal.WithLabelValues("png", "ok")), 1},
		{"fallbacks", counterValue(t, m.TemplateFallbacks.WithLabelValues("outline")), 1},
		{"cache hits", counterValue(t, m.CacheHitsTotal), 1},
		{"cache misses", counterValue(t, m.CacheMissesTotal), 2},
		{"decks stored", counterValue(t, m.DecksStoredTotal), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRender("svg", nil, time.Second)
	m.IncTemplateFallback("cover")
	m.IncCacheHit()
	m.IncCacheMiss()
	m.IncDecksStored()
	if m.Registry() != nil {
		t.Error("nil Metrics should have no registry")
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if h := m.Middleware(next); h == nil {
		t.Error("Middleware() returned nil")
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/ppt/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ppt/abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	got := counterValue(t, m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/ppt/{id}", "404"))
	if got != 1 {
		t.Errorf("requests counter = %v, want 1", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "deckbind_http_requests_total") {
		t.Errorf("exposition missing deckbind_http_requests_total:\n%s", body)
	}
}
