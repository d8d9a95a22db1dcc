package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	SessionsTotal      uint64
	AnalysesTotal      uint64
	AnalysesFailed     uint64
	TranslationsTotal  uint64
	TranslationsFailed uint64
	SpeechFailed       uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

func IncrementRequests()     { atomic.AddUint64(&globalMetrics.RequestsTotal, 1) }
func IncrementInProgress()   { atomic.AddUint64(&globalMetrics.RequestsInProgress, 1) }
func DecrementInProgress()   { atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0)) }
func IncrementSuccess()      { atomic.AddUint64(&globalMetrics.RequestsSuccess, 1) }
func IncrementFailed()       { atomic.AddUint64(&globalMetrics.RequestsFailed, 1) }
func IncrementSessions()     { atomic.AddUint64(&globalMetrics.SessionsTotal, 1) }
func IncrementSpeechFailed() { atomic.AddUint64(&globalMetrics.SpeechFailed, 1) }

// RecordAnalysis counts one analyze action and whether the model call failed.
func RecordAnalysis(failed bool) {
	atomic.AddUint64(&globalMetrics.AnalysesTotal, 1)
	if failed {
		atomic.AddUint64(&globalMetrics.AnalysesFailed, 1)
	}
}

// RecordTranslation counts one translate action and whether it failed.
func RecordTranslation(failed bool) {
	atomic.AddUint64(&globalMetrics.TranslationsTotal, 1)
	if failed {
		atomic.AddUint64(&globalMetrics.TranslationsFailed, 1)
	}
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"sessions_total":       atomic.LoadUint64(&globalMetrics.SessionsTotal),
		"analyses_total":       atomic.LoadUint64(&globalMetrics.AnalysesTotal),
		"analyses_failed":      atomic.LoadUint64(&globalMetrics.AnalysesFailed),
		"translations_total":   atomic.LoadUint64(&globalMetrics.TranslationsTotal),
		"translations_failed":  atomic.LoadUint64(&globalMetrics.TranslationsFailed),
		"speech_failed":        atomic.LoadUint64(&globalMetrics.SpeechFailed),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
