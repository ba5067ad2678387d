package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// InsertSpinResult persists one committed spin outcome. Timestamps are
// supplied here so both backends store the same UTC instant.
func (s *Store) InsertSpinResult(ctx context.Context, number int, color, parity string) (SpinResult, error) {
	if !s.IsConfigured() {
		return SpinResult{}, ErrNotConfigured
	}
	r := SpinResult{
		ID:         NewID(),
		Number:     number,
		Color:      color,
		Parity:     parity,
		OccurredAt: time.Now().UTC(),
	}
	_, err := s.DB.ExecContext(ctx, s.rebind(
		`INSERT INTO spin_results (id, number, color, parity, is_deleted, occurred_at) VALUES (?,?,?,?,?,?)`),
		r.ID, r.Number, r.Color, r.Parity, false, r.OccurredAt)
	if err != nil {
		return SpinResult{}, err
	}
	return r, nil
}

// ListResults returns results newest-first, soft-deleted rows included
// only on request.
func (s *Store) ListResults(ctx context.Context, limit int, includeDeleted bool) ([]SpinResult, error) {
	if !s.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT id, number, color, parity, is_deleted, deleted_at, occurred_at FROM spin_results`
	if !includeDeleted {
		q += ` WHERE is_deleted = ?`
	}
	q += ` ORDER BY occurred_at DESC, id DESC LIMIT ?`

	args := []any{limit}
	if !includeDeleted {
		args = []any{false, limit}
	}
	rows, err := s.DB.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SpinResult{}
	for rows.Next() {
		var r SpinResult
		if err := rows.Scan(&r.ID, &r.Number, &r.Color, &r.Parity, &r.IsDeleted, &r.DeletedAt, &r.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestResult returns the most recent non-deleted result.
func (s *Store) LatestResult(ctx context.Context) (*SpinResult, error) {
	if !s.IsConfigured() {
		return nil, ErrNotConfigured
	}
	row := s.DB.QueryRowContext(ctx, s.rebind(
		`SELECT id, number, color, parity, is_deleted, deleted_at, occurred_at FROM spin_results WHERE is_deleted = ? ORDER BY occurred_at DESC, id DESC LIMIT 1`),
		false)
	var r SpinResult
	if err := row.Scan(&r.ID, &r.Number, &r.Color, &r.Parity, &r.IsDeleted, &r.DeletedAt, &r.OccurredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) GetResult(ctx context.Context, id string) (*SpinResult, error) {
	if !s.IsConfigured() {
		return nil, ErrNotConfigured
	}
	row := s.DB.QueryRowContext(ctx, s.rebind(
		`SELECT id, number, color, parity, is_deleted, deleted_at, occurred_at FROM spin_results WHERE id = ?`), id)
	var r SpinResult
	if err := row.Scan(&r.ID, &r.Number, &r.Color, &r.Parity, &r.IsDeleted, &r.DeletedAt, &r.OccurredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// SoftDeleteResult hides a result without losing it. Reports whether a
// live row was actually flagged.
func (s *Store) SoftDeleteResult(ctx context.Context, id string) (bool, error) {
	if !s.IsConfigured() {
		return false, ErrNotConfigured
	}
	res, err := s.DB.ExecContext(ctx, s.rebind(
		`UPDATE spin_results SET is_deleted = ?, deleted_at = ? WHERE id = ? AND is_deleted = ?`),
		true, time.Now().UTC(), id, false)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) RestoreResult(ctx context.Context, id string) (bool, error) {
	if !s.IsConfigured() {
		return false, ErrNotConfigured
	}
	res, err := s.DB.ExecContext(ctx, s.rebind(
		`UPDATE spin_results SET is_deleted = ?, deleted_at = NULL WHERE id = ? AND is_deleted = ?`),
		false, id, true)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// HardDeleteResult removes the row permanently.
func (s *Store) HardDeleteResult(ctx context.Context, id string) (bool, error) {
	if !s.IsConfigured() {
		return false, ErrNotConfigured
	}
	res, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM spin_results WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SoftDeleteRecentByNumber flags up to max of the newest live results
// carrying the given number. Queue deletions call this as best-effort
// bookkeeping; rows and queue entries share no key, only the value.
func (s *Store) SoftDeleteRecentByNumber(ctx context.Context, number, max int) (int, error) {
	if !s.IsConfigured() {
		return 0, ErrNotConfigured
	}
	if max <= 0 {
		return 0, nil
	}
	res, err := s.DB.ExecContext(ctx, s.rebind(
		`UPDATE spin_results SET is_deleted = ?, deleted_at = ?
		 WHERE id IN (
		     SELECT id FROM spin_results WHERE number = ? AND is_deleted = ?
		     ORDER BY occurred_at DESC, id DESC LIMIT ?
		 )`),
		true, time.Now().UTC(), number, false, max)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
