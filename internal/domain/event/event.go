package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a session lifecycle event
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	SessionID     int64                  `json:"session_id"`
	VoucherCode   string                 `json:"voucher_code"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new lifecycle event with auto-generated ID and timestamp
func NewEvent(eventType Type, sessionID int64, voucherCode string, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		SessionID:     sessionID,
		VoucherCode:   voucherCode,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// NewEventWithCorrelation creates an event linked to a correlation chain
func NewEventWithCorrelation(eventType Type, sessionID int64, voucherCode string, payload map[string]interface{}, correlationID string) *Event {
	evt := NewEvent(eventType, sessionID, voucherCode, payload)
	evt.CorrelationID = correlationID
	return evt
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadInt retrieves an int64 value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}
