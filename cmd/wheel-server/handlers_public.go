package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"lucky-wheel/internal/game"
	"lucky-wheel/internal/store"
)

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !st.IsConfigured() {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "none"})
			return
		}
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

// gameStateHandler is the frontend poll. Each hit counts as activity
// for the idle sweeper.
func gameStateHandler(coord *game.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coord.RecordActivity()
		snap := coord.Snapshot(r.Context())
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func gameEventsHandler(coord *game.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after_id")
		items := coord.Events().ReplayAfter(after)
		latest := ""
		if len(items) > 0 {
			latest = items[len(items)-1].EventID
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":     items,
			"latest_id": latest,
		})
	}
}

func resultsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := parsePagination(r)
		items, err := st.ListResults(r.Context(), limit, false)
		if err != nil {
			if errors.Is(err, store.ErrNotConfigured) {
				writeHTTPError(w, http.StatusServiceUnavailable, "store_not_configured")
				return
			}
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": items,
			"limit": limit,
		})
	}
}
