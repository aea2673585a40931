package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, h http.Handler, path string) (int, status) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body status
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("%s: decode: %v", path, err)
	}
	return rec.Code, body
}

func TestHealthz(t *testing.T) {
	code, body := get(t, Router(pinger{err: errors.New("down")}), "/healthz")
	if code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("healthz = %d %+v", code, body)
	}
}

func TestReadyz(t *testing.T) {
	code, body := get(t, Router(pinger{}), "/readyz")
	if code != http.StatusOK || body.Status != "ready" {
		t.Fatalf("ready = %d %+v", code, body)
	}
	code, body = get(t, Router(pinger{err: errors.New("dial tcp: refused")}), "/readyz")
	if code != http.StatusServiceUnavailable || body.Error == "" {
		t.Fatalf("not ready = %d %+v", code, body)
	}
	code, _ = get(t, Router(nil), "/readyz")
	if code != http.StatusOK {
		t.Fatalf("nil db = %d", code)
	}
}

func TestListenServesProbes(t *testing.T) {
	s, err := Listen(context.Background(), "127.0.0.1:0", pinger{})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer s.Shutdown(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
