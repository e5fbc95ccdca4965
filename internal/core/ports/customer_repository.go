package ports

import (
	"context"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

// CustomerMutator edits a customer in place. Returning an error aborts the
// update without persisting anything.
type CustomerMutator func(c *domain.Customer) error

// CustomerRepository defines persistence operations for customer records.
type CustomerRepository interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]domain.Customer, error)
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	// Search returns records matching query in store order; an empty query
	// yields an empty result.
	Search(ctx context.Context, query string) ([]domain.Customer, error)
	// Create appends c. It fails with domain.ErrDuplicateCustomer when c.ID
	// is already taken.
	Create(ctx context.Context, c domain.Customer) error
	// Update applies mutate to the record atomically. The record id cannot
	// be changed by the mutator.
	Update(ctx context.Context, id string, mutate CustomerMutator) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
	// Check reports whether the backing storage is usable.
	Check(ctx context.Context) error
}
