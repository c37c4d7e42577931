package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/intake/internal/workorder"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

// Submit inserts a work order. Re-submitting the same order id is a no-op,
// so a retried confirmation never creates a duplicate row.
func (s *Store) Submit(ctx context.Context, wo workorder.WorkOrder) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO work_orders (id, subject, description, customer_id, priority, status, call_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		wo.ID, wo.Subject, wo.Description, wo.CustomerID, string(wo.Priority), string(wo.Status), wo.CallID, wo.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("customer %s no longer exists: %w", wo.CustomerID, err)
		}
		return fmt.Errorf("insert work order: %w", err)
	}
	return nil
}
