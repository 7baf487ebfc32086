package repository

import (
	"context"
	"database/sql"

	"github.com/xenolabs/engage-backend/internal/model"
	"github.com/xenolabs/engage-backend/internal/segment"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so an audience selection
// can run either standalone (preview) or inside the campaign transaction at
// the transaction's own isolation level.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CustomerRepositoryInterface defines methods used by services
type CustomerRepositoryInterface interface {
	CountAudience(ctx context.Context, pred segment.Predicate) (int, error)
	SelectAudience(ctx context.Context, q Querier, pred segment.Predicate) ([]model.Customer, error)
	UpsertByEmail(ctx context.Context, name, email string) error
}

// CustomerRepository is the concrete implementation
type CustomerRepository struct {
	DB *sql.DB
}

// CountAudience returns how many customers the predicate matches right now.
// Preview only; the commit path re-resolves inside its own transaction.
func (r *CustomerRepository) CountAudience(ctx context.Context, pred segment.Predicate) (int, error) {
	query, args := pred.CountQuery()
	var count int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SelectAudience returns the matching customers, ordered by id. Pass the
// enclosing *sql.Tx as q when the selection must share a transaction.
func (r *CustomerRepository) SelectAudience(ctx context.Context, q Querier, pred segment.Predicate) ([]model.Customer, error) {
	query, args := pred.SelectQuery()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.TotalSpend, &c.VisitCount, &c.LastVisitAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// UpsertByEmail folds one ingestion event into the customers table. First
// sight inserts with visit_count 1; a conflict on email overwrites the name,
// increments visit_count and refreshes last_visit_at. Redelivered events
// increment visit_count again — the event carries no deduplication id.
func (r *CustomerRepository) UpsertByEmail(ctx context.Context, name, email string) error {
	query := `
        INSERT INTO customers (name, email, total_spend, visit_count, last_visit_at)
        VALUES ($1, $2, 0, 1, NOW())
        ON CONFLICT (email) DO UPDATE
        SET name = EXCLUDED.name,
            visit_count = customers.visit_count + 1,
            last_visit_at = NOW()
    `
	_, err := r.DB.ExecContext(ctx, query, name, email)
	return err
}
