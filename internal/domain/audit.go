package domain

import "time"

// AuditEvent is an append-only record of a notable state transition.
type AuditEvent struct {
	ID         int32             `json:"id"`
	Action     string            `json:"action"`
	ActorID    int32             `json:"actor_id"`
	TargetType string            `json:"target_type"`
	TargetID   string            `json:"target_id"`
	Summary    string            `json:"summary"`
	Metadata   map[string]string `json:"metadata"`
	CreatedOn  time.Time         `json:"created_on"`
}
