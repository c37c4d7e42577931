package workorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/intake/internal/session"
)

var (
	ErrInvalid = errors.New("work order invalid")
	ErrSubmit  = errors.New("work order submission failed")
)

// Sink accepts committed work orders. Submit must be safe to call again
// with the same order after a failure.
type Sink interface {
	Submit(ctx context.Context, wo WorkOrder) error
}

// Committer turns a confirmed call session into a submitted work order.
type Committer struct {
	sink   Sink
	now    func() time.Time
	logger *slog.Logger
}

func NewCommitter(sink Sink, logger *slog.Logger) *Committer {
	return &Committer{sink: sink, now: time.Now, logger: logger}
}

// Build assembles the work order for sess without submitting it.
func (c *Committer) Build(sess *session.Session) (WorkOrder, error) {
	if err := validate(sess); err != nil {
		return WorkOrder{}, err
	}
	svc := sess.Service
	return WorkOrder{
		ID:          OrderID(sess.CallID, sess.CreatedAt),
		Subject:     subject(svc.ServiceType, svc.Location),
		Description: svc.Description,
		CustomerID:  sess.CustomerID,
		Priority:    PriorityFor(svc.Urgency),
		Status:      StatusPending,
		CallID:      sess.CallID,
		CreatedAt:   c.now().UTC(),
	}, nil
}

// Commit builds the work order and hands it to the sink. Validation
// failures wrap ErrInvalid; sink failures wrap ErrSubmit.
func (c *Committer) Commit(ctx context.Context, sess *session.Session) (*WorkOrder, error) {
	wo, err := c.Build(sess)
	if err != nil {
		return nil, err
	}

	if err := c.sink.Submit(ctx, wo); err != nil {
		c.logger.Error("work order submission failed",
			"call_id", sess.CallID,
			"work_order_id", wo.ID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrSubmit, err)
	}

	c.logger.Info("work order submitted",
		"call_id", sess.CallID,
		"work_order_id", wo.ID,
		"customer_id", wo.CustomerID,
		"priority", wo.Priority,
	)
	return &wo, nil
}

func validate(sess *session.Session) error {
	var missing []string
	if sess.CustomerID == "" {
		missing = append(missing, "customer_id")
	}
	if sess.Service.ServiceType == "" {
		missing = append(missing, "service_type")
	}
	if sess.Service.Location == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(sess.Service.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// MemorySink keeps submitted work orders in memory. Set Fail to make the
// next submissions return that error. Re-submitting a known id is a no-op.
type MemorySink struct {
	mu     sync.Mutex
	orders []WorkOrder
	Fail   error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Submit(_ context.Context, wo WorkOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail != nil {
		return m.Fail
	}
	for _, o := range m.orders {
		if o.ID == wo.ID {
			return nil
		}
	}
	m.orders = append(m.orders, wo)
	return nil
}

// Orders returns a copy of everything submitted so far.
func (m *MemorySink) Orders() []WorkOrder {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]WorkOrder, len(m.orders))
	copy(out, m.orders)
	return out
}

// SetFail changes the injected failure under the sink's lock.
func (m *MemorySink) SetFail(err error) {
	m.mu.Lock()
	m.Fail = err
	m.mu.Unlock()
}
