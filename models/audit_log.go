package models

import "time"

// AuditLog is an immutable record of a state-changing action.
// Rows are appended in the same transaction as the change and never deleted.
type AuditLog struct {
	ID          int       `json:"id" db:"id"`
	ActorUserID *int      `json:"actor_user_id,omitempty" db:"actor_user_id"`
	Action      string    `json:"action" db:"action"`
	EntityType  string    `json:"entity_type" db:"entity_type"`
	EntityID    *int      `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress   *string   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent   *string   `json:"user_agent,omitempty" db:"user_agent"`
	Details     string    `json:"details" db:"details"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
