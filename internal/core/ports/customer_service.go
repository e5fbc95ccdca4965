package ports

import (
	"context"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

// CreateCustomerInput carries the client-supplied fields of a new customer.
// Nil pointers take the documented defaults.
type CreateCustomerInput struct {
	Name         string
	Source       *string
	Contact      *string
	Requirement  *string
	LastMeeting  *string
	NextFollowup *string
	Stage        *string
}

// UpdateCustomerInput is a partial record; only non-nil fields are applied.
type UpdateCustomerInput struct {
	Name         *string
	Source       *string
	Contact      *string
	Requirement  *string
	LastMeeting  *string
	NextFollowup *string
	Stage        *string
}

// CustomerService defines use-case operations over customer records.
type CustomerService interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id string, input UpdateCustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}
