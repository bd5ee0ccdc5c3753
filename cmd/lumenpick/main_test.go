package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/lumenpick/internal/config"
	logpkg "github.com/kailas-cloud/lumenpick/internal/logger"
	chiTransport "github.com/kailas-cloud/lumenpick/internal/transport/chi"
)

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := jsonRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("scorer exploded")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/intelligence/runs", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rr.Code)
	}
	var resp chiTransport.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != chiTransport.CodeInternalError {
		t.Fatalf("code: got %s", resp.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatal("expected panic to be logged")
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logpkg.FromContext(r.Context()).Info("inside")
		sawLogger = true
		w.WriteHeader(http.StatusTeapot)
	})
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.New(core))(inner))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rankings", http.NoBody))

	if !sawLogger || rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id not propagated")
	}
	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one canonical line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/rankings" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if logs.FilterMessage("inside").FilterFieldKey("request_id").Len() != 1 {
		t.Fatal("request logger not in context")
	}
}

func TestBuildCatalogSource(t *testing.T) {
	logger := zap.NewNop()

	src, closeFn, err := buildCatalogSource(config.CatalogConfig{Driver: "file", Path: "catalog.yaml"}, logger)
	if err != nil || src.Name() != "file" {
		t.Fatalf("file: %v %v", src, err)
	}
	closeFn()

	src, closeFn, err = buildCatalogSource(config.CatalogConfig{
		Driver: "http", BaseURL: "http://catalog:8081", TimeoutSec: 1,
	}, logger)
	if err != nil || src.Name() != "http" {
		t.Fatalf("http: %v %v", src, err)
	}
	closeFn()

	if _, _, err := buildCatalogSource(config.CatalogConfig{Driver: "http"}, logger); err == nil {
		t.Fatal("expected error without base url")
	}
	if _, _, err := buildCatalogSource(config.CatalogConfig{Driver: "ftp"}, logger); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
