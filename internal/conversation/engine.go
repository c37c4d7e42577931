package conversation

import (
	"context"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/intake/internal/hermes"
	"github.com/MikeSquared-Agency/intake/internal/session"
)

// Publisher emits lifecycle events. *hermes.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Engine is the conversation entry point: it routes each turn to the
// session for its call and runs the machine against it.
type Engine struct {
	sessions *session.Store
	machine  *Machine
	events   Publisher
	logger   *slog.Logger
}

// NewEngine wires an engine. events may be nil to skip event publication.
func NewEngine(sessions *session.Store, machine *Machine, events Publisher, logger *slog.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		machine:  machine,
		events:   events,
		logger:   logger,
	}
}

// HandleTurn processes one caller utterance for callID, creating the
// session on first contact. When it returns an error the session is left
// as it was before the turn.
func (e *Engine) HandleTurn(ctx context.Context, callID, text string) (Reply, error) {
	var reply Reply
	var created bool
	err := e.sessions.Update(callID, func(sess *session.Session, isNew bool) error {
		created = isNew
		r, err := e.machine.Step(ctx, sess, text)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})

	if created {
		e.publish(hermes.SubjectCallStarted, hermes.CallStartedEvent{
			CallID:    callID,
			Timestamp: time.Now().UTC(),
		})
	}
	if err != nil {
		e.logger.Error("turn failed", "call_id", callID, "error", err)
		return Reply{}, err
	}

	e.logger.Info("turn handled",
		"call_id", callID,
		"action", reply.Action,
		"next_step", reply.NextStep,
		"utterance_len", len(text),
	)

	if reply.WorkOrder != nil {
		e.publish(hermes.SubjectWorkOrderCreated, hermes.WorkOrderCreatedEvent{
			CallID:    callID,
			WorkOrder: *reply.WorkOrder,
			Timestamp: time.Now().UTC(),
		})
	}
	return reply, nil
}

// EndCall tears down the session for callID. Unknown or already ended
// calls are ignored.
func (e *Engine) EndCall(callID string) {
	e.end(callID, hermes.EndReasonHangup)
}

// Evict reports a session the reaper already removed.
func (e *Engine) Evict(callID string) {
	e.publish(hermes.SubjectCallEnded, hermes.CallEndedEvent{
		CallID:    callID,
		Reason:    hermes.EndReasonIdleTimeout,
		Timestamp: time.Now().UTC(),
	})
}

func (e *Engine) end(callID, reason string) {
	if !e.sessions.Delete(callID) {
		return
	}
	e.logger.Info("call ended", "call_id", callID, "reason", reason)
	e.publish(hermes.SubjectCallEnded, hermes.CallEndedEvent{
		CallID:    callID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}

// GetSession returns a snapshot of the session for callID, or
// session.ErrNotFound.
func (e *Engine) GetSession(callID string) (*session.Session, error) {
	return e.sessions.Get(callID)
}

// ActiveCalls returns the number of live sessions.
func (e *Engine) ActiveCalls() int {
	return e.sessions.Len()
}

func (e *Engine) publish(subject string, data any) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(subject, data); err != nil {
		e.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
