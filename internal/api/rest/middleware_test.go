package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggingMiddlewareAssignsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	router := mux.NewRouter()
	router.Use(RequestLoggingMiddleware(logger))
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusNoContent)
	}
	if rr.Header().Get(requestIDHeader) == "" {
		t.Error("response is missing a generated request ID header")
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "GET" {
		t.Errorf("logged method = %v, want GET", fields["method"])
	}
	if fields["path"] != "/ping" {
		t.Errorf("logged path = %v, want /ping", fields["path"])
	}
	if fields["status"] != int64(http.StatusNoContent) {
		t.Errorf("logged status = %v, want %d", fields["status"], http.StatusNoContent)
	}
	if fields["request_id"] == "" {
		t.Error("logged request_id is empty")
	}
}

func TestRequestLoggingMiddlewarePreservesClientRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	router := mux.NewRouter()
	router.Use(RequestLoggingMiddleware(logger))
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "client-supplied-id")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get(requestIDHeader); got != "client-supplied-id" {
		t.Errorf("request ID header = %q, want client-supplied-id", got)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "client-supplied-id" {
		t.Errorf("logged request_id = %v, want client-supplied-id", got)
	}
}

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	router := mux.NewRouter()
	router.Use(TimeoutMiddleware(50 * time.Millisecond))

	var sawDeadline bool
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		sawDeadline = ok && time.Until(deadline) <= 50*time.Millisecond
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	if !sawDeadline {
		t.Error("handler context did not carry the middleware deadline")
	}
}
