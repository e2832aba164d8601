package model

import "time"

// Activity is one append-only feed entry keyed by entity type and id.
type Activity struct {
	ID        int       `json:"id"`
	Entity    string    `json:"entity"`
	EntityID  int       `json:"entity_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
