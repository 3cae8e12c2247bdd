package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/civicbook/internal/domain"
)

const (
	EventRecordSubmitted = "record_submitted"
	EventRecordAdvanced  = "record_advanced"
	EventRecordCancelled = "record_cancelled"
)

// RecordEvent describes one lifecycle change of a record.
type RecordEvent struct {
	Type           string          `json:"type"`
	RecordID       string          `json:"record_id"`
	Reference      string          `json:"reference"`
	Category       domain.Category `json:"category"`
	Status         domain.Status   `json:"status"`
	PreviousStatus domain.Status   `json:"previous_status,omitempty"`
	ResourceID     string          `json:"resource_id,omitempty"`
	Date           string          `json:"date,omitempty"`
	Slot           string          `json:"slot,omitempty"`
	Size           int             `json:"size,omitempty"`
	Total          *int64          `json:"total,omitempty"`
	Contact        domain.Contact  `json:"contact"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewRecordEvent builds an event from the record state after the change.
func NewRecordEvent(eventType string, r domain.Record, previous domain.Status) RecordEvent {
	e := RecordEvent{
		Type:           eventType,
		RecordID:       r.ID.String(),
		Reference:      r.Reference,
		Category:       r.Category,
		Status:         r.Status,
		PreviousStatus: previous,
		ResourceID:     r.ResourceID,
		Date:           r.Date,
		Slot:           r.Slot,
		Size:           r.Size,
		Contact:        r.Contact,
		OccurredAt:     r.UpdatedAt,
	}
	if r.Price != nil {
		total := r.Price.Total
		e.Total = &total
	}
	return e
}

func DecodeRecordEvent(data []byte) (RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return RecordEvent{}, fmt.Errorf("decode record event: %w", err)
	}
	if e.Type == "" || e.Reference == "" {
		return RecordEvent{}, fmt.Errorf("decode record event: missing type or reference")
	}
	return e, nil
}
