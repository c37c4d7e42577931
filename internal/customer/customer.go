package customer

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned by a Directory when no customer has the identifier.
var ErrNotFound = errors.New("customer not found")

// Customer is a verified caller as known to the customer directory.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Directory resolves customer identifiers. Identifiers match
// case-insensitively and the returned Customer carries the canonical ID.
// Lookup returns ErrNotFound when the identifier is unknown; any other error
// is a backend failure.
type Directory interface {
	Lookup(ctx context.Context, id string) (*Customer, error)
}

// MemoryDirectory is a Directory backed by a map.
type MemoryDirectory struct {
	mu        sync.RWMutex
	customers map[string]Customer
}

func NewMemoryDirectory(customers ...Customer) *MemoryDirectory {
	d := &MemoryDirectory{customers: make(map[string]Customer, len(customers))}
	for _, c := range customers {
		d.customers[key(c.ID)] = c
	}
	return d
}

func (d *MemoryDirectory) Put(c Customer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.customers[key(c.ID)] = c
}

func (d *MemoryDirectory) Lookup(_ context.Context, id string) (*Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.customers[key(id)]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func key(id string) string {
	return strings.ToUpper(id)
}
