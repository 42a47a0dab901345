// Package types provides common types used across Busk.
package types

import "time"

// Entity is the base type for all Busk records with wall-clock timestamps.
// Embed this in record types to get creation metadata. Domain-level times
// (session start and end, tip timestamps) use the engine's logical clock
// instead and live on the records themselves.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates a new Entity with current timestamps.
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp to now.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// Age returns how long ago the entity was created.
func (e Entity) Age() time.Duration {
	return time.Since(e.CreatedAt)
}
