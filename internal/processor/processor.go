package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/intake/internal/conversation"
	"github.com/MikeSquared-Agency/intake/internal/hermes"
)

// Conversations is the part of the conversation engine the processor drives.
type Conversations interface {
	HandleTurn(ctx context.Context, callID, text string) (conversation.Reply, error)
	EndCall(callID string)
}

// ReplyEvent is published on hermes.SubjectReply for every handled utterance.
// Exactly one of Reply and Error is set.
type ReplyEvent struct {
	CallID    string              `json:"call_id"`
	Reply     *conversation.Reply `json:"reply,omitempty"`
	Error     string              `json:"error,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Processor feeds transcription and telephony events into the engine.
type Processor struct {
	engine      Conversations
	hermes      conversation.Publisher
	turnTimeout time.Duration
	logger      *slog.Logger
}

func New(engine Conversations, h conversation.Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		engine:      engine,
		hermes:      h,
		turnTimeout: 10 * time.Second,
		logger:      logger,
	}
}

// HandleUtterance is the NATS handler for swarm.transcription.utterance.
func (p *Processor) HandleUtterance(subject string, data []byte) {
	var evt hermes.UtteranceEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse utterance event", "error", err)
		return
	}
	if evt.CallID == "" {
		p.logger.Warn("utterance event without call id", "subject", subject)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.turnTimeout)
	defer cancel()

	out := ReplyEvent{CallID: evt.CallID}
	reply, err := p.engine.HandleTurn(ctx, evt.CallID, evt.Text)
	if err != nil {
		p.logger.Error("utterance processing failed", "call_id", evt.CallID, "error", err)
		out.Error = err.Error()
	} else {
		out.Reply = &reply
	}
	out.Timestamp = time.Now().UTC()

	if err := p.hermes.Publish(hermes.SubjectReply, out); err != nil {
		p.logger.Error("failed to publish reply", "call_id", evt.CallID, "error", err)
	}
}

// HandleHangup is the NATS handler for swarm.telephony.call.ended.
func (p *Processor) HandleHangup(subject string, data []byte) {
	var evt hermes.HangupEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse hangup event", "error", err)
		return
	}
	if evt.CallID == "" {
		p.logger.Warn("hangup event without call id", "subject", subject)
		return
	}
	p.engine.EndCall(evt.CallID)
}
