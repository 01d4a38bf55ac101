package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.readiness(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	NewJSONResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	rl := s.limiter.GetMetrics()
	det := s.detector.GetMetrics()
	tr := s.tracer.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "fintrack_uptime_seconds %d\n", int64(time.Since(s.startedAt).Seconds()))
	fmt.Fprintf(w, "fintrack_ratelimit_hits_total %d\n", rl.TotalHits)
	fmt.Fprintf(w, "fintrack_ratelimit_clients %d\n", rl.ClientCount)
	fmt.Fprintf(w, "fintrack_suspicious_requests_total %d\n", det.SuspiciousRequests)
	fmt.Fprintf(w, "fintrack_requests_total %d\n", tr.TotalRequests)
	fmt.Fprintf(w, "fintrack_last_response_time_microseconds %d\n", tr.AverageResponseTime)
	if s.cacheStats != nil {
		cs := s.cacheStats()
		fmt.Fprintf(w, "fintrack_cache_hits_total %d\n", cs.Hits)
		fmt.Fprintf(w, "fintrack_cache_misses_total %d\n", cs.Misses)
		fmt.Fprintf(w, "fintrack_cache_evictions_total %d\n", cs.Evictions)
		fmt.Fprintf(w, "fintrack_cache_entries %d\n", cs.Size)
	}
}
