package session

import (
	"errors"
	"time"

	"github.com/MikeSquared-Agency/intake/internal/extractor"
)

var (
	ErrNotFound    = errors.New("call session not found")
	ErrEmptyCallID = errors.New("call id is required")
)

// Speakers recorded in a transcript.
const (
	SpeakerCaller = "caller"
	SpeakerAgent  = "agent"
)

// Turn is one transcript line.
type Turn struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Session is the per-call conversation record.
//
// CustomerID is set exactly when State is past StateGreeting, and Service
// is only populated from StateServiceQuestions onward. Transcript is
// append-only for the life of the session.
type Session struct {
	CallID         string                   `json:"call_id"`
	State          State                    `json:"state"`
	CustomerID     string                   `json:"customer_id,omitempty"`
	CustomerName   string                   `json:"customer_name,omitempty"`
	Service        extractor.ServiceDetails `json:"service_fields"`
	WorkOrderID    string                   `json:"work_order_id,omitempty"`
	Transcript     []Turn                   `json:"transcript"`
	CreatedAt      time.Time                `json:"created_at"`
	LastActivityAt time.Time                `json:"last_activity_at"`
}

func New(callID string, now time.Time) *Session {
	return &Session{
		CallID:         callID,
		State:          StateGreeting,
		Transcript:     []Turn{},
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Append records a transcript line.
func (s *Session) Append(speaker, text string, at time.Time) {
	s.Transcript = append(s.Transcript, Turn{Speaker: speaker, Text: text, At: at})
}

// Clone returns a deep copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Transcript = make([]Turn, len(s.Transcript))
	copy(c.Transcript, s.Transcript)
	return &c
}
