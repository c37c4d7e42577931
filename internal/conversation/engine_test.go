package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MikeSquared-Agency/intake/internal/customer"
	"github.com/MikeSquared-Agency/intake/internal/hermes"
	"github.com/MikeSquared-Agency/intake/internal/session"
	"github.com/MikeSquared-Agency/intake/internal/workorder"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

func newTestEngine(sink workorder.Sink, pub Publisher) *Engine {
	return NewEngine(session.NewStore(nil), newTestMachine(testDirectory(), sink), pub, discardLogger())
}

func TestEngine_FullCall(t *testing.T) {
	sink := workorder.NewMemorySink()
	pub := &recordingPublisher{}
	e := newTestEngine(sink, pub)
	ctx := context.Background()

	turns := []struct {
		text   string
		action Action
		next   session.State
	}{
		{"hello", ActionAskCustomerNumber, session.StateGreeting},
		{"my customer number is 12345", ActionCustomerVerified, session.StateServiceQuestions},
		{"plumbing emergency in bathroom", ActionConfirmDetails, session.StateConfirmation},
		{"yes that's correct", ActionTaskCreated, session.StateCompleted},
		{"thanks", ActionCallCompleted, session.StateCompleted},
	}
	for _, tt := range turns {
		reply, err := e.HandleTurn(ctx, "call-1", tt.text)
		if err != nil {
			t.Fatalf("HandleTurn(%q) failed: %v", tt.text, err)
		}
		if reply.Action != tt.action || reply.NextStep != tt.next {
			t.Errorf("HandleTurn(%q) = %s/%s, want %s/%s", tt.text, reply.Action, reply.NextStep, tt.action, tt.next)
		}
	}

	sess, err := e.GetSession("call-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(sess.Transcript) != 2*len(turns) {
		t.Errorf("expected %d transcript lines, got %d", 2*len(turns), len(sess.Transcript))
	}
	if len(sink.Orders()) != 1 {
		t.Errorf("expected one work order, got %d", len(sink.Orders()))
	}
	if pub.count(hermes.SubjectCallStarted) != 1 {
		t.Errorf("expected one call.started event, got %d", pub.count(hermes.SubjectCallStarted))
	}
	if pub.count(hermes.SubjectWorkOrderCreated) != 1 {
		t.Errorf("expected one workorder.created event, got %d", pub.count(hermes.SubjectWorkOrderCreated))
	}
}

func TestEngine_FirstTurnCreatesGreetingSession(t *testing.T) {
	e := newTestEngine(workorder.NewMemorySink(), nil)

	if _, err := e.GetSession("call-new"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected no session before first turn, got %v", err)
	}

	reply, err := e.HandleTurn(context.Background(), "call-new", "good morning")
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if reply.NextStep != session.StateGreeting {
		t.Errorf("expected greeting, got %s", reply.NextStep)
	}
	if e.ActiveCalls() != 1 {
		t.Errorf("expected one active call, got %d", e.ActiveCalls())
	}
}

func TestEngine_UnknownCustomerStaysInGreeting(t *testing.T) {
	e := NewEngine(session.NewStore(nil), newTestMachine(customer.NewMemoryDirectory(), workorder.NewMemorySink()), nil, discardLogger())

	reply, err := e.HandleTurn(context.Background(), "call-1", "customer 999999")
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	sess, _ := e.GetSession("call-1")
	if sess.State != session.StateGreeting || reply.Action != ActionCustomerNotFound {
		t.Errorf("expected greeting/customer_not_found, got %s/%s", sess.State, reply.Action)
	}
}

func TestEngine_EndCall(t *testing.T) {
	pub := &recordingPublisher{}
	e := newTestEngine(workorder.NewMemorySink(), pub)
	_, _ = e.HandleTurn(context.Background(), "call-1", "hello")

	e.EndCall("call-1")
	if _, err := e.GetSession("call-1"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound after end, got %v", err)
	}

	e.EndCall("call-1")
	e.EndCall("never-existed")
	if pub.count(hermes.SubjectCallEnded) != 1 {
		t.Errorf("expected a single call.ended event, got %d", pub.count(hermes.SubjectCallEnded))
	}
}

func TestEngine_SinkFailureLeavesSessionUntouched(t *testing.T) {
	sink := workorder.NewMemorySink()
	e := newTestEngine(sink, nil)
	ctx := context.Background()

	for _, text := range []string{"customer 12345", "pipe burst in the bathroom"} {
		if _, err := e.HandleTurn(ctx, "call-1", text); err != nil {
			t.Fatalf("HandleTurn(%q) failed: %v", text, err)
		}
	}
	before, _ := e.GetSession("call-1")

	sink.SetFail(errors.New("order service unavailable"))
	if _, err := e.HandleTurn(ctx, "call-1", "yes"); !errors.Is(err, workorder.ErrSubmit) {
		t.Fatalf("expected ErrSubmit, got %v", err)
	}

	after, _ := e.GetSession("call-1")
	if after.State != session.StateConfirmation {
		t.Errorf("expected confirmation, got %s", after.State)
	}
	if len(after.Transcript) != len(before.Transcript) {
		t.Errorf("expected transcript unchanged, got %d lines (was %d)", len(after.Transcript), len(before.Transcript))
	}

	sink.SetFail(nil)
	reply, err := e.HandleTurn(ctx, "call-1", "yes")
	if err != nil || reply.Action != ActionTaskCreated {
		t.Fatalf("expected retry to succeed, got %v / %s", err, reply.Action)
	}
}

// ackLostSink stores every order but reports the first submission as
// failed, as when the insert commits and the acknowledgement is lost.
type ackLostSink struct {
	mu      sync.Mutex
	stored  []workorder.WorkOrder
	dropped bool
}

func (s *ackLostSink) Submit(_ context.Context, wo workorder.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, wo)
	if !s.dropped {
		s.dropped = true
		return errors.New("timeout waiting for ack")
	}
	return nil
}

func TestEngine_RetriedConfirmationReusesOrderID(t *testing.T) {
	sink := &ackLostSink{}
	e := newTestEngine(sink, nil)
	ctx := context.Background()

	for _, text := range []string{"customer 12345", "plumbing emergency in bathroom"} {
		if _, err := e.HandleTurn(ctx, "call-1", text); err != nil {
			t.Fatalf("HandleTurn(%q) failed: %v", text, err)
		}
	}
	if _, err := e.HandleTurn(ctx, "call-1", "yes"); !errors.Is(err, workorder.ErrSubmit) {
		t.Fatalf("expected ErrSubmit on lost ack, got %v", err)
	}
	reply, err := e.HandleTurn(ctx, "call-1", "yes")
	if err != nil || reply.Action != ActionTaskCreated {
		t.Fatalf("expected retry to create the task, got %v / %s", err, reply.Action)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.stored) != 2 {
		t.Fatalf("expected two submissions, got %d", len(sink.stored))
	}
	if sink.stored[0].ID != sink.stored[1].ID {
		t.Errorf("expected both submissions to carry one id, got %s and %s", sink.stored[0].ID, sink.stored[1].ID)
	}
	if reply.WorkOrder.ID != sink.stored[0].ID {
		t.Errorf("expected reply to reference the stored order %s, got %s", sink.stored[0].ID, reply.WorkOrder.ID)
	}
}

func TestEngine_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats down")}
	e := newTestEngine(workorder.NewMemorySink(), pub)

	if _, err := e.HandleTurn(context.Background(), "call-1", "customer 12345"); err != nil {
		t.Fatalf("expected turn to succeed despite publish failure, got %v", err)
	}
}

func TestEngine_EmptyCallID(t *testing.T) {
	e := newTestEngine(workorder.NewMemorySink(), nil)
	if _, err := e.HandleTurn(context.Background(), "", "hello"); !errors.Is(err, session.ErrEmptyCallID) {
		t.Errorf("expected ErrEmptyCallID, got %v", err)
	}
}

func TestEngine_Evict(t *testing.T) {
	pub := &recordingPublisher{}
	e := newTestEngine(workorder.NewMemorySink(), pub)

	e.Evict("call-9")

	if pub.count(hermes.SubjectCallEnded) != 1 {
		t.Fatalf("expected call.ended event, got %d", pub.count(hermes.SubjectCallEnded))
	}
	evt, ok := pub.payloads[0].(hermes.CallEndedEvent)
	if !ok || evt.Reason != hermes.EndReasonIdleTimeout {
		t.Errorf("expected idle_timeout reason, got %+v", pub.payloads[0])
	}
}
