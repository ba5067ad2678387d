package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lucky-wheel/internal/adminbot"
	"lucky-wheel/internal/audit"
	"lucky-wheel/internal/config"
	"lucky-wheel/internal/game"
	"lucky-wheel/internal/queue"
	"lucky-wheel/internal/store"
	"lucky-wheel/internal/testutil"

	"github.com/go-chi/chi/v5"
)

type testServer struct {
	router *chi.Mux
	st     *store.Store
	coord  *game.Coordinator
	aud    *audit.Recorder
}

// slowOptions keeps every timer far away so phases only change when a
// test drives them.
func slowOptions() game.Options {
	return game.Options{
		RoundDuration:    time.Minute,
		SpinAnimation:    time.Minute,
		SpinBuffer:       0,
		ActivityTimeout:  time.Minute,
		SweepInterval:    time.Minute,
		LastSpinCacheTTL: time.Minute,
		StoreRetryMax:    3,
		StoreRetryBase:   time.Millisecond,
	}
}

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	st, cleanup := testutil.OpenTestStore(t)
	aud := audit.New(st)
	coord := game.NewCoordinator(st, aud, queue.New(10), slowOptions())
	cfg := config.ServerConfig{AdminAPIKey: "admin-key"}
	bot := adminbot.NewServer(adminbot.NewDispatcher(coord, st, aud, nil), cfg.AdminAPIKey)
	router := newRouter(st, cfg, coord, aud, bot)
	return &testServer{router: router, st: st, coord: coord, aud: aud}, cleanup
}

func adminRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("X-Admin-Key", "admin-key")
	return req
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}
