package workorder

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

type Status string

const StatusPending Status = "pending"

// WorkOrder is the service request handed to the rest of the platform once
// a caller confirms their details.
type WorkOrder struct {
	ID          uuid.UUID `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	CustomerID  string    `json:"customer_id"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	CallID      string    `json:"call_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// orderNamespace scopes the name-based work order ids.
var orderNamespace = uuid.MustParse("6f1c2d0e-3b8a-4e57-9a41-2d5c7b9e8f10")

// OrderID is the work order id for one call session. It depends only on the
// call id and the session's creation time, so every confirmation attempt in
// the same session submits the same id.
func OrderID(callID string, sessionCreated time.Time) uuid.UUID {
	name := callID + "\x00" + sessionCreated.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(orderNamespace, []byte(name))
}

// Reference is the short order number read back to the caller.
func (w WorkOrder) Reference() string {
	return w.ID.String()[:8]
}

// PriorityFor maps a caller's urgency to a work order priority.
func PriorityFor(urgency string) Priority {
	switch urgency {
	case "emergency":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

func subject(serviceType, location string) string {
	return fmt.Sprintf("%s - %s", serviceType, location)
}
