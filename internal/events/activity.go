// Package events defines the notifications emitted when the archive changes
// and the Kafka producer that delivers them.
package events

import "time"

// EventTypeArchived is the event_type header value of ActivityArchived.
const EventTypeArchived = "activity.archived"

// ActivityArchived is emitted after an activity file has been committed to the archive.
type ActivityArchived struct {
	EventID      string    `json:"event_id"`
	RunID        string    `json:"run_id"`
	ActivityID   string    `json:"activity_id"`
	ActivityType string    `json:"activity_type"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	Overwrite    bool      `json:"overwrite"`
	ArchivedAt   time.Time `json:"archived_at"`
}
