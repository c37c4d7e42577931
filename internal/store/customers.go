package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/intake/internal/customer"
	"github.com/jackc/pgx/v5"
)

// Lookup resolves a customer number against the customers table,
// ignoring case.
func (s *Store) Lookup(ctx context.Context, id string) (*customer.Customer, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT customer_number, name, coalesce(phone, ''), coalesce(address, '')
		FROM customers
		WHERE upper(customer_number) = upper($1)`, id)

	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}
	return &c, nil
}
