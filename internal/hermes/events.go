package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/intake/internal/workorder"
)

// Inbound subjects.
const (
	SubjectUtterance = "swarm.transcription.utterance"
	SubjectHangup    = "swarm.telephony.call.ended"
)

// Outbound subjects.
const (
	SubjectReply            = "swarm.intake.reply"
	SubjectCallStarted      = "swarm.intake.call.started"
	SubjectCallEnded        = "swarm.intake.call.ended"
	SubjectWorkOrderCreated = "swarm.intake.workorder.created"
	SubjectRegistered       = "swarm.agent.intake.registered"
)

// Call end reasons.
const (
	EndReasonHangup      = "hangup"
	EndReasonIdleTimeout = "idle_timeout"
)

// UtteranceEvent is a transcribed caller utterance from the transcription service.
type UtteranceEvent struct {
	CallID string `json:"call_id"`
	Text   string `json:"text"`
}

// HangupEvent is published by the telephony bridge when a call ends.
type HangupEvent struct {
	CallID string `json:"call_id"`
}

type CallStartedEvent struct {
	CallID    string    `json:"call_id"`
	Timestamp time.Time `json:"timestamp"`
}

type CallEndedEvent struct {
	CallID    string    `json:"call_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type WorkOrderCreatedEvent struct {
	CallID    string              `json:"call_id"`
	WorkOrder workorder.WorkOrder `json:"work_order"`
	Timestamp time.Time           `json:"timestamp"`
}
