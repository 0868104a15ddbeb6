package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// responseWriter is a wrapper for http.ResponseWriter that captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// endpointLabel returns the route template for the request so parameterised
// paths like /status/nodes/{nodeID} stay a single metric series
func endpointLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return r.URL.Path
}

// MetricsMiddleware instruments status API handlers with request count,
// latency and in-flight gauges. Registered on the router with Use.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := GetMetrics()

		m.IncRequestsInFlight()
		defer m.DecRequestsInFlight()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rw, r)

		endpoint := endpointLabel(r)
		m.RecordRequest(r.Method, endpoint, strconv.Itoa(rw.statusCode))
		m.ObserveRequestDuration(r.Method, endpoint, time.Since(start).Seconds())
	})
}
