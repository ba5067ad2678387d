package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lucky-wheel/internal/adminbot"
	"lucky-wheel/internal/audit"
	"lucky-wheel/internal/config"
	"lucky-wheel/internal/game"
	"lucky-wheel/internal/queue"
	"lucky-wheel/internal/store"
)

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp["error"]
}

func TestMalformedJSONBodies(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	cases := []struct {
		path string
		body string
	}{
		{"/api/admin/spin", `{not json`},
		{"/api/admin/queue", `[]`},
	}
	for _, tc := range cases {
		w := ts.do(adminRequest(http.MethodPost, tc.path, tc.body))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s expected 400, got %d", tc.path, w.Code)
		}
		if code := errorCode(t, w); code != "invalid_json" {
			t.Fatalf("%s error code = %q, want invalid_json", tc.path, code)
		}
	}
}

func TestQueueAddRejectsBadBatch(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	w := ts.do(adminRequest(http.MethodPost, "/api/admin/queue", `{"numbers":[]}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty batch expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "invalid_request" {
		t.Fatalf("empty batch error code = %q", code)
	}

	// One bad number fails the whole batch before anything is queued.
	w = ts.do(adminRequest(http.MethodPost, "/api/admin/queue", `{"numbers":[7,99]}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad batch expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "invalid_number" {
		t.Fatalf("bad batch error code = %q", code)
	}
	if got := ts.coord.Queue().Len(); got != 0 {
		t.Fatalf("queue length after rejected batch = %d, want 0", got)
	}
}

func TestQueueRemovePathValidation(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	for _, raw := range []string{"abc", "99"} {
		w := ts.do(adminRequest(http.MethodDelete, "/api/admin/queue/"+raw, ""))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("remove %q expected 400, got %d", raw, w.Code)
		}
		if code := errorCode(t, w); code != "invalid_number" {
			t.Fatalf("remove %q error code = %q", raw, code)
		}
	}
}

func TestRejectedAdminRequestsAreAudited(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()

	cases := []struct {
		method string
		path   string
		body   string
		action string
	}{
		{http.MethodPost, "/api/admin/spin", `{not json`, "manual_spin"},
		{http.MethodPost, "/api/admin/queue", `{not json`, "queue_add"},
		{http.MethodPost, "/api/admin/queue", `{"numbers":[]}`, "queue_add"},
		{http.MethodPost, "/api/admin/queue", `{"numbers":[99]}`, "queue_add"},
		{http.MethodDelete, "/api/admin/queue/abc", "", "queue_remove"},
		{http.MethodDelete, "/api/admin/queue/99", "", "queue_remove"},
	}
	for _, tc := range cases {
		before, err := ts.aud.Recent(ctx, 50)
		if err != nil {
			t.Fatalf("recent audit before %s %s: %v", tc.method, tc.path, err)
		}
		w := ts.do(adminRequest(tc.method, tc.path, tc.body))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s %s expected 400, got %d", tc.method, tc.path, w.Code)
		}
		after, err := ts.aud.Recent(ctx, 50)
		if err != nil {
			t.Fatalf("recent audit after %s %s: %v", tc.method, tc.path, err)
		}
		if len(after) != len(before)+1 {
			t.Fatalf("%s %s produced %d audit entries, want exactly 1", tc.method, tc.path, len(after)-len(before))
		}
		if e := after[0]; e.Action != tc.action || e.Success || e.ActorID != "api-admin" {
			t.Fatalf("%s %s audit entry = %+v, want failed %s", tc.method, tc.path, e, tc.action)
		}
	}
}

func TestUnconfiguredStoreResponses(t *testing.T) {
	st, err := store.Open("sqlite", "")
	if err != nil {
		t.Fatalf("open unconfigured store: %v", err)
	}
	aud := audit.New(st)
	coord := game.NewCoordinator(st, aud, queue.New(10), slowOptions())
	cfg := config.ServerConfig{AdminAPIKey: "admin-key"}
	bot := adminbot.NewServer(adminbot.NewDispatcher(coord, st, aud, nil), cfg.AdminAPIKey)
	router := newRouter(st, cfg, coord, aud, bot)
	ts := &testServer{router: router, st: st, coord: coord, aud: aud}

	w := ts.do(adminRequest(http.MethodGet, "/api/results", ""))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("results expected 503, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "store_not_configured" {
		t.Fatalf("results error code = %q", code)
	}

	w = ts.do(adminRequest(http.MethodGet, "/api/admin/audit", ""))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("audit expected 503, got %d", w.Code)
	}

	// Health stays green: a missing database is degraded, not down.
	w = ts.do(adminRequest(http.MethodGet, "/healthz", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz expected 200, got %d", w.Code)
	}
	var health map[string]any
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if health["db"] != "none" {
		t.Fatalf("healthz db = %v, want none", health["db"])
	}

	// Gameplay keeps working without persistence.
	w = ts.do(adminRequest(http.MethodPost, "/api/admin/queue", `{"numbers":[12]}`))
	if w.Code != http.StatusOK {
		t.Fatalf("queue add on degraded store: %d %s", w.Code, w.Body.String())
	}
}
