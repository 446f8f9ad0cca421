package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	h := NewMux(&mockService{ready: true})
	ok := httpRequestsTotal.WithLabelValues("/health", http.MethodGet, "200")
	miss := httpRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")
	okBefore, missBefore := testutil.ToFloat64(ok), testutil.ToFloat64(miss)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/such/route/42", nil))

	if got := testutil.ToFloat64(ok); got != okBefore+1 {
		t.Fatalf("/health counter=%v want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(miss); got != missBefore+1 {
		t.Fatalf("unmatched counter=%v want %v", got, missBefore+1)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight gauge should settle at 0, got %v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewMux(&mockService{})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "classifyd_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}
