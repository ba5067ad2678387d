package store

import (
	"context"
	"time"
)

// AppendAudit writes one audit row. Entries missing an id or timestamp
// get them stamped here; nothing in an entry is ever updated later.
func (s *Store) AppendAudit(ctx context.Context, e AuditEntry) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	_, err := s.DB.ExecContext(ctx, s.rebind(
		`INSERT INTO audit_log (id, actor_id, actor_name, action, details, old_value, new_value, success, occurred_at) VALUES (?,?,?,?,?,?,?,?,?)`),
		e.ID, e.ActorID, e.ActorName, e.Action, e.Details, e.OldValue, e.NewValue, e.Success, e.OccurredAt)
	return err
}

// ListAudit returns entries newest-first.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if !s.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, s.rebind(
		`SELECT id, actor_id, actor_name, action, details, old_value, new_value, success, occurred_at FROM audit_log ORDER BY occurred_at DESC, id DESC LIMIT ?`),
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.Details, &e.OldValue, &e.NewValue, &e.Success, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
