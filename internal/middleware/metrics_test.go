package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func counter(t *testing.T, name string) uint64 {
	t.Helper()
	v, ok := GetMetrics()[name].(uint64)
	if !ok {
		t.Fatalf("metric %s missing", name)
	}
	return v
}

func TestMetricsMiddlewareCountsOutcome(t *testing.T) {
	okBefore := counter(t, "requests_success")
	failBefore := counter(t, "requests_failed")

	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.Error(w, "nope", http.StatusBadRequest)
			return
		}
		w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/good", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	if got := counter(t, "requests_success") - okBefore; got != 1 {
		t.Errorf("success delta %d, want 1", got)
	}
	if got := counter(t, "requests_failed") - failBefore; got != 1 {
		t.Errorf("failed delta %d, want 1", got)
	}
	if got := counter(t, "requests_in_progress"); got != 0 {
		t.Errorf("in progress %d, want 0", got)
	}
}

func TestRecordAnalysisAndTranslation(t *testing.T) {
	at, af := counter(t, "analyses_total"), counter(t, "analyses_failed")
	RecordAnalysis(false)
	RecordAnalysis(true)
	if counter(t, "analyses_total")-at != 2 || counter(t, "analyses_failed")-af != 1 {
		t.Error("analysis counters not updated")
	}

	tt, tf := counter(t, "translations_total"), counter(t, "translations_failed")
	RecordTranslation(true)
	if counter(t, "translations_total")-tt != 1 || counter(t, "translations_failed")-tf != 1 {
		t.Error("translation counters not updated")
	}
}

func TestLoggingPassesThrough(t *testing.T) {
	h := Logging(zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status %d", rec.Code)
	}
}
