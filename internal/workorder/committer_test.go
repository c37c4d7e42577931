package workorder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/intake/internal/extractor"
	"github.com/MikeSquared-Agency/intake/internal/session"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func confirmedSession(urgency string) *session.Session {
	return &session.Session{
		CallID:     "call-42",
		State:      session.StateConfirmation,
		CustomerID: "12345",
		Service: extractor.ServiceDetails{
			ServiceType: "plumbing",
			Description: "plumbing emergency in bathroom",
			Location:    "bathroom",
			Urgency:     urgency,
		},
	}
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		urgency string
		want    Priority
	}{
		{"emergency", PriorityHigh},
		{"routine", PriorityMedium},
		{"", PriorityMedium},
		{"whenever", PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.urgency, func(t *testing.T) {
			if got := PriorityFor(tt.urgency); got != tt.want {
				t.Errorf("PriorityFor(%q) = %s, want %s", tt.urgency, got, tt.want)
			}
		})
	}
}

func TestCommit_Success(t *testing.T) {
	sink := NewMemorySink()
	c := NewCommitter(sink, discardLogger())

	wo, err := c.Commit(context.Background(), confirmedSession("emergency"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wo.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if wo.Subject != "plumbing - bathroom" {
		t.Errorf("expected subject 'plumbing - bathroom', got %q", wo.Subject)
	}
	if wo.Description != "plumbing emergency in bathroom" {
		t.Errorf("expected verbatim description, got %q", wo.Description)
	}
	if wo.CustomerID != "12345" {
		t.Errorf("expected customer 12345, got %q", wo.CustomerID)
	}
	if wo.Priority != PriorityHigh {
		t.Errorf("expected high priority, got %s", wo.Priority)
	}
	if wo.Status != StatusPending {
		t.Errorf("expected pending status, got %s", wo.Status)
	}
	if wo.CallID != "call-42" {
		t.Errorf("expected call id call-42, got %q", wo.CallID)
	}

	orders := sink.Orders()
	if len(orders) != 1 || orders[0].ID != wo.ID {
		t.Fatalf("expected the order to reach the sink, got %+v", orders)
	}
}

func TestCommit_RoutineIsMedium(t *testing.T) {
	wo, err := NewCommitter(NewMemorySink(), discardLogger()).Commit(context.Background(), confirmedSession("routine"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wo.Priority != PriorityMedium {
		t.Errorf("expected medium priority, got %s", wo.Priority)
	}
}

func TestCommit_IDIsStablePerSession(t *testing.T) {
	sink := NewMemorySink()
	c := NewCommitter(sink, discardLogger())
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	sess := confirmedSession("routine")
	sess.CreatedAt = created
	a, _ := c.Commit(context.Background(), sess)
	b, _ := c.Commit(context.Background(), sess.Clone())
	if a.ID != b.ID {
		t.Errorf("expected the same id for repeated commits of one session, got %s and %s", a.ID, b.ID)
	}
	if len(sink.Orders()) != 1 {
		t.Errorf("expected the sink to keep one order, got %d", len(sink.Orders()))
	}

	other := confirmedSession("routine")
	other.CallID = "call-43"
	other.CreatedAt = created
	c2, _ := c.Commit(context.Background(), other)
	if c2.ID == a.ID {
		t.Error("expected distinct ids for distinct calls")
	}

	// A new session reusing the call id gets a new order.
	again := confirmedSession("routine")
	again.CreatedAt = created.Add(time.Hour)
	d, _ := c.Commit(context.Background(), again)
	if d.ID == a.ID {
		t.Error("expected a fresh id for a new session on the same call id")
	}
}

func TestCommit_Validation(t *testing.T) {
	sink := NewMemorySink()
	c := NewCommitter(sink, discardLogger())

	sess := confirmedSession("routine")
	sess.Service.Description = "   "
	sess.CustomerID = ""

	_, err := c.Commit(context.Background(), sess)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "customer_id") || !strings.Contains(err.Error(), "description") {
		t.Errorf("expected missing fields in error, got %q", err)
	}
	if len(sink.Orders()) != 0 {
		t.Error("expected nothing submitted on validation failure")
	}
}

func TestCommit_SinkFailure(t *testing.T) {
	sink := NewMemorySink()
	cause := errors.New("customer reference no longer exists")
	sink.SetFail(cause)

	_, err := NewCommitter(sink, discardLogger()).Commit(context.Background(), confirmedSession("routine"))
	if !errors.Is(err, ErrSubmit) {
		t.Errorf("expected ErrSubmit, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected underlying cause to be wrapped, got %v", err)
	}
}

func TestReference(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	if got := (WorkOrder{ID: id}).Reference(); got != "0f8fad5b" {
		t.Errorf("expected 0f8fad5b, got %q", got)
	}
}
