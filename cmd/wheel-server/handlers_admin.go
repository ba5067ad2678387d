package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"lucky-wheel/internal/audit"
	"lucky-wheel/internal/game"
	"lucky-wheel/internal/queue"
	"lucky-wheel/internal/roulette"
	"lucky-wheel/internal/store"

	"github.com/go-chi/chi/v5"
)

// gameErrorCode maps coordinator sentinels to an HTTP status and
// error code. Anything unmapped is a real failure.
func gameErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrBusy):
		return http.StatusConflict, "operation_in_progress"
	case errors.Is(err, game.ErrNotRunning):
		return http.StatusConflict, "game_not_running"
	case errors.Is(err, game.ErrAlreadyRunning):
		return http.StatusConflict, "game_already_running"
	case errors.Is(err, game.ErrRoundActive):
		return http.StatusConflict, "round_already_active"
	case errors.Is(err, game.ErrNoActiveRound):
		return http.StatusConflict, "no_active_round"
	case errors.Is(err, game.ErrAlreadySpinning):
		return http.StatusConflict, "already_spinning"
	case errors.Is(err, game.ErrNotSpinning):
		return http.StatusConflict, "not_spinning"
	case errors.Is(err, roulette.ErrInvalidNumber):
		return http.StatusBadRequest, "invalid_number"
	case errors.Is(err, queue.ErrQueueFull):
		return http.StatusConflict, "queue_full"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func roundStartHandler(coord *game.Coordinator, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		if err := coord.StartRound(r.Context()); err != nil {
			aud.Record(r.Context(), actorID, actorName, "round_start", fmt.Sprintf("failed: %v", err), false)
			status, code := gameErrorCode(err)
			writeHTTPError(w, status, code)
			return
		}
		aud.Record(r.Context(), actorID, actorName, "round_start", "round started", true)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func roundEndHandler(coord *game.Coordinator, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		if err := coord.TriggerRoundEnd(r.Context()); err != nil {
			aud.Record(r.Context(), actorID, actorName, "round_end", fmt.Sprintf("failed: %v", err), false)
			status, code := gameErrorCode(err)
			writeHTTPError(w, status, code)
			return
		}
		snap := coord.Snapshot(r.Context())
		aud.Record(r.Context(), actorID, actorName, "round_end", "round ended early", true)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "spinning": snap.IsSpinning})
	}
}

func spinHandler(coord *game.Coordinator, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		var body struct {
			Number int `json:"number"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			aud.Record(r.Context(), actorID, actorName, "manual_spin", "rejected: invalid json", false)
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if err := coord.TriggerManualSpin(r.Context(), body.Number); err != nil {
			aud.Record(r.Context(), actorID, actorName, "manual_spin", fmt.Sprintf("spin %d failed: %v", body.Number, err), false)
			status, code := gameErrorCode(err)
			writeHTTPError(w, status, code)
			return
		}
		snap := coord.Snapshot(r.Context())
		aud.Record(r.Context(), actorID, actorName, "manual_spin", fmt.Sprintf("manual spin %d", body.Number), true)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "spinning": snap.IsSpinning})
	}
}

func runStateHandler(aud *audit.Recorder, action string, op func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		if err := op(r.Context()); err != nil {
			aud.Record(r.Context(), actorID, actorName, action, fmt.Sprintf("failed: %v", err), false)
			status, code := gameErrorCode(err)
			writeHTTPError(w, status, code)
			return
		}
		aud.Record(r.Context(), actorID, actorName, action, "ok", true)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func resetHandler(coord *game.Coordinator, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		before := fmt.Sprint(coord.Queue().Values())
		if err := coord.Reset(r.Context()); err != nil {
			aud.Record(r.Context(), actorID, actorName, "game_reset", fmt.Sprintf("failed: %v", err), false)
			status, code := gameErrorCode(err)
			writeHTTPError(w, status, code)
			return
		}
		newV := "[]"
		aud.RecordChange(r.Context(), actorID, actorName, "game_reset", "hard reset", &before, &newV, true)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func queueListHandler(coord *game.Coordinator, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		values := coord.Queue().Values()
		aud.Record(r.Context(), actorID, actorName, "queue_list", fmt.Sprintf("%d queued", len(values)), true)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":  values,
			"length": len(values),
		})
	}
}

func queueAddHandler(coord *game.Coordinator, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		var body struct {
			Numbers []int `json:"numbers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			aud.Record(r.Context(), actorID, actorName, "queue_add", "rejected: invalid json", false)
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if len(body.Numbers) == 0 {
			aud.Record(r.Context(), actorID, actorName, "queue_add", "rejected: no numbers given", false)
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		for _, n := range body.Numbers {
			if err := roulette.Validate(n); err != nil {
				aud.Record(r.Context(), actorID, actorName, "queue_add", fmt.Sprintf("rejected %d: %v", n, err), false)
				writeHTTPError(w, http.StatusBadRequest, "invalid_number")
				return
			}
		}

		queued := make([]int, 0, len(body.Numbers))
		startedRound := false
		for _, n := range body.Numbers {
			started, err := coord.EnqueueNumber(r.Context(), n)
			if err != nil {
				aud.Record(r.Context(), actorID, actorName, "queue_add",
					fmt.Sprintf("queued %v then failed on %d: %v", queued, n, err), false)
				status, code := gameErrorCode(err)
				writeHTTPError(w, status, code)
				return
			}
			queued = append(queued, n)
			if started {
				startedRound = true
			}
		}
		aud.Record(r.Context(), actorID, actorName, "queue_add", fmt.Sprintf("queued %v", queued), true)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":            true,
			"queued":        queued,
			"queue_length":  coord.Queue().Len(),
			"round_started": startedRound,
		})
	}
}

func queueClearHandler(coord *game.Coordinator, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		before := coord.Queue().Values()
		dropped := coord.Queue().Clear()
		oldV := fmt.Sprint(before)
		newV := "[]"
		aud.RecordChange(r.Context(), actorID, actorName, "queue_clear",
			fmt.Sprintf("dropped %d", dropped), &oldV, &newV, true)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "dropped": dropped})
	}
}

func queueRemoveHandler(coord *game.Coordinator, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		raw := chi.URLParam(r, "number")
		n, err := strconv.Atoi(raw)
		if err != nil {
			aud.Record(r.Context(), actorID, actorName, "queue_remove", fmt.Sprintf("rejected %q: not a number", raw), false)
			writeHTTPError(w, http.StatusBadRequest, "invalid_number")
			return
		}
		if err := roulette.Validate(n); err != nil {
			aud.Record(r.Context(), actorID, actorName, "queue_remove", fmt.Sprintf("rejected %d: %v", n, err), false)
			writeHTTPError(w, http.StatusBadRequest, "invalid_number")
			return
		}
		before := coord.Queue().Values()
		removed := coord.Queue().RemoveValue(n)
		oldV := fmt.Sprint(before)
		newV := fmt.Sprint(coord.Queue().Values())
		aud.RecordChange(r.Context(), actorID, actorName, "queue_remove",
			fmt.Sprintf("removed %d x %d", removed, n), &oldV, &newV, true)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "removed": removed})
	}
}

func auditHandler(aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := parsePagination(r)
		items, err := aud.Recent(r.Context(), limit)
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

func adminResultsHandler(st *store.Store, aud *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		limit, _ := parsePagination(r)
		includeDeleted := r.URL.Query().Get("include_deleted") == "true"
		items, err := st.ListResults(r.Context(), limit, includeDeleted)
		if err != nil {
			if errors.Is(err, store.ErrNotConfigured) {
				writeHTTPError(w, http.StatusServiceUnavailable, "store_not_configured")
				return
			}
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		aud.Record(r.Context(), actorID, actorName, "history_view", fmt.Sprintf("listed %d", len(items)), true)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": items,
			"limit": limit,
		})
	}
}

func resultFlagHandler(st *store.Store, aud *audit.Recorder, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, actorName := adminActor(r)
		id := chi.URLParam(r, "id")
		if id == "" {
			aud.Record(r.Context(), actorID, actorName, action, "rejected: missing id", false)
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		var found bool
		var err error
		switch action {
		case "result_delete":
			found, err = st.SoftDeleteResult(r.Context(), id)
		case "result_restore":
			found, err = st.RestoreResult(r.Context(), id)
		case "result_purge":
			found, err = st.HardDeleteResult(r.Context(), id)
		default:
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		if err != nil {
			aud.Record(r.Context(), actorID, actorName, action, fmt.Sprintf("%s failed: %v", id, err), false)
			if errors.Is(err, store.ErrNotConfigured) {
				writeHTTPError(w, http.StatusServiceUnavailable, "store_not_configured")
				return
			}
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		aud.Record(r.Context(), actorID, actorName, action, id, found)
		if !found {
			writeHTTPError(w, http.StatusNotFound, "result_not_found")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
