package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danmuck/collectdin/internal/protocol/schema"
	"github.com/danmuck/collectdin/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func newTestAdmin(t *testing.T, ready func() bool) *Admin {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := testlog.Start(t)
	return New("collectdin-test", "127.0.0.1:0", nil, schema.Default(), ready, logger)
}

func get(t *testing.T, a *Admin, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	a.HTTPRouter().ServeHTTP(rr, req)
	var body map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body: %v", path, err)
		}
	}
	return rr, body
}

func TestHealth(t *testing.T) {
	a := newTestAdmin(t, nil)
	rr, body := get(t, a, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["status"] != "ok" || body["node"] != "collectdin-test" || body["version"] != Version {
		t.Fatalf("unexpected body: %#v", body)
	}
	if a.Kind() != "collectdin" || a.NodeID() != "collectdin-test" {
		t.Fatalf("unexpected node identity: %s/%s", a.Kind(), a.NodeID())
	}
}

func TestReadyFollowsListener(t *testing.T) {
	var bound atomic.Bool
	a := newTestAdmin(t, bound.Load)

	rr, body := get(t, a, "/ready")
	if rr.Code != http.StatusServiceUnavailable || body["ready"] != false {
		t.Fatalf("expected 503 before bind, got %d %#v", rr.Code, body)
	}

	bound.Store(true)
	rr, body = get(t, a, "/ready")
	if rr.Code != http.StatusOK || body["ready"] != true {
		t.Fatalf("expected 200 after bind, got %d %#v", rr.Code, body)
	}
	if n, _ := body["types"].(float64); n == 0 {
		t.Fatalf("expected a type count, got %#v", body["types"])
	}
}

func TestTypesListAndLookup(t *testing.T) {
	a := newTestAdmin(t, nil)

	rr, body := get(t, a, "/types")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	list, _ := body["types"].([]any)
	if len(list) != schema.Default().Len() {
		t.Fatalf("expected %d types, got %d", schema.Default().Len(), len(list))
	}

	rr, body = get(t, a, "/types/load")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	sources, _ := body["sources"].([]any)
	if len(sources) != 3 {
		t.Fatalf("load should have 3 sources, got %#v", body["sources"])
	}
	first := sources[0].(map[string]any)
	if first["name"] != "shortterm" || first["type"] != "GAUGE" || first["max"] != 5000.0 {
		t.Fatalf("unexpected first source: %#v", first)
	}

	_, body = get(t, a, "/types/counter")
	src := body["sources"].([]any)[0].(map[string]any)
	if _, ok := src["min"]; ok {
		t.Fatalf("unbounded min should be omitted: %#v", src)
	}

	rr, _ = get(t, a, "/types/no_such_type")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestAdmin(t, nil)
	get(t, a, "/health")
	rr, _ := get(t, a, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "collectdin_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := testlog.Start(t)

	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping listener test in restricted environment: %v", err)
	}
	addr := probe.Addr().String()
	_ = probe.Close()

	a := New("collectdin-serve", addr, nil, schema.Default(), nil, logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("admin did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("admin did not stop")
	}
}
