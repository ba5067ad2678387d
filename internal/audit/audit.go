// Package audit records every admin-facing action, accepted or not.
package audit

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/store"
)

// Recorder appends audit entries through the store. Appends are
// best-effort: a failed write is logged and swallowed so no admin
// action ever fails on audit I/O.
type Recorder struct {
	Store *store.Store
}

func New(s *store.Store) *Recorder {
	return &Recorder{Store: s}
}

// Record writes one entry for an admin action. oldValue/newValue are
// optional before/after snapshots of whatever the action touched.
func (r *Recorder) Record(ctx context.Context, actorID, actorName, action, details string, success bool) {
	r.RecordChange(ctx, actorID, actorName, action, details, nil, nil, success)
}

func (r *Recorder) RecordChange(ctx context.Context, actorID, actorName, action, details string, oldValue, newValue *string, success bool) {
	if r == nil || r.Store == nil {
		return
	}
	entry := store.AuditEntry{
		ActorID:   actorID,
		ActorName: actorName,
		Action:    action,
		Details:   details,
		OldValue:  oldValue,
		NewValue:  newValue,
		Success:   success,
	}
	if err := r.Store.AppendAudit(ctx, entry); err != nil && !errors.Is(err, store.ErrNotConfigured) {
		log.Error().Err(err).Str("action", action).Str("actor", actorID).Msg("audit append failed")
	}
}

// Recent returns the newest entries for display.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]store.AuditEntry, error) {
	if r == nil || r.Store == nil {
		return nil, store.ErrNotConfigured
	}
	return r.Store.ListAudit(ctx, limit)
}
