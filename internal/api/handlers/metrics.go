package handlers

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// MetricsHandler exports a small set of counters in Prometheus text
// format without pulling in the client library.
type MetricsHandler struct {
	startedAt time.Time
	requests  *atomic.Int64
}

func NewMetricsHandler(requests *atomic.Int64) *MetricsHandler {
	return &MetricsHandler{startedAt: time.Now(), requests: requests}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "# HELP wellspace_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE wellspace_up gauge\n")
	fmt.Fprintf(w, "wellspace_up 1\n")
	fmt.Fprintf(w, "# HELP wellspace_uptime_seconds Seconds since the server started\n")
	fmt.Fprintf(w, "# TYPE wellspace_uptime_seconds counter\n")
	fmt.Fprintf(w, "wellspace_uptime_seconds %d\n", int64(time.Since(h.startedAt).Seconds()))
	if h.requests != nil {
		fmt.Fprintf(w, "# HELP wellspace_http_requests_total HTTP requests served\n")
		fmt.Fprintf(w, "# TYPE wellspace_http_requests_total counter\n")
		fmt.Fprintf(w, "wellspace_http_requests_total %d\n", h.requests.Load())
	}
}
