package store

import "time"

type SpinResult struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	Color      string     `json:"color"`
	Parity     string     `json:"parity"`
	IsDeleted  bool       `json:"is_deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type AuditEntry struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	OldValue   *string   `json:"old_value,omitempty"`
	NewValue   *string   `json:"new_value,omitempty"`
	Success    bool      `json:"success"`
	OccurredAt time.Time `json:"occurred_at"`
}
