package mq

import "time"

// RecurringGeneratePayload triggers a recurring-task generation scan.
// Date is YYYY-MM-DD; empty means the consumer's current day.
type RecurringGeneratePayload struct {
	Date string `json:"date"`
}

// ActivityRecordedPayload mirrors one activity feed row as published on
// the events exchange.
type ActivityRecordedPayload struct {
	ActivityID int       `json:"activity_id"`
	Entity     string    `json:"entity"`
	EntityID   int       `json:"entity_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
