package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xiaoying/sales-assistant/internal/api/metrics"
	"github.com/xiaoying/sales-assistant/internal/core/domain"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

const maxIDAttempts = 5

type CustomerService struct {
	repo   ports.CustomerRepository
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

func NewCustomerService(repo ports.CustomerRepository, logger zerolog.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		logger: logger.With().Str("component", "customer_service").Logger(),
		now:    time.Now,
		newID:  generateCustomerID,
	}
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

// SearchCustomers returns no results for a blank query rather than the
// whole store.
func (s *CustomerService) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Customer{}, nil
	}
	return s.repo.Search(ctx, query)
}

// CreateCustomer validates input, fills defaults and stores a new record
// under a freshly generated id.
func (s *CustomerService) CreateCustomer(ctx context.Context, input ports.CreateCustomerInput) (*domain.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateName(name); err != nil {
		metrics.CustomerOperationsTotal.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}

	customer := domain.Customer{
		Name:         name,
		Source:       valueOr(input.Source, domain.DefaultSource),
		Contact:      valueOr(input.Contact, ""),
		Requirement:  valueOr(input.Requirement, ""),
		LastMeeting:  valueOr(input.LastMeeting, domain.Today(s.now())),
		NextFollowup: valueOr(input.NextFollowup, ""),
		Stage:        valueOr(input.Stage, domain.DefaultStage),
	}

	for attempt := 1; ; attempt++ {
		customer.ID = s.newID()
		err := s.repo.Create(ctx, customer)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateCustomer) && attempt < maxIDAttempts {
			s.logger.Debug().Str("customer_id", customer.ID).Msg("id collision, regenerating")
			continue
		}
		metrics.CustomerOperationsTotal.WithLabelValues("create", "error").Inc()
		s.logger.Error().Err(err).Msg("failed to create customer")
		return nil, fmt.Errorf("create customer: %w", err)
	}

	metrics.CustomerOperationsTotal.WithLabelValues("create", "ok").Inc()
	s.logger.Info().Str("customer_id", customer.ID).Msg("customer created")
	return &customer, nil
}

// UpdateCustomer merges the provided fields over the stored record. The id
// is never changed.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, input ports.UpdateCustomerInput) (*domain.Customer, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if err := domain.ValidateName(trimmed); err != nil {
			metrics.CustomerOperationsTotal.WithLabelValues("update", "invalid").Inc()
			return nil, err
		}
		input.Name = &trimmed
	}

	updated, err := s.repo.Update(ctx, id, func(c *domain.Customer) error {
		applyPatch(c, input)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			metrics.CustomerOperationsTotal.WithLabelValues("update", "not_found").Inc()
			return nil, err
		}
		metrics.CustomerOperationsTotal.WithLabelValues("update", "error").Inc()
		s.logger.Error().Err(err).Str("customer_id", id).Msg("failed to update customer")
		return nil, fmt.Errorf("update customer: %w", err)
	}

	metrics.CustomerOperationsTotal.WithLabelValues("update", "ok").Inc()
	s.logger.Info().Str("customer_id", id).Msg("customer updated")
	return updated, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			metrics.CustomerOperationsTotal.WithLabelValues("delete", "not_found").Inc()
			return err
		}
		metrics.CustomerOperationsTotal.WithLabelValues("delete", "error").Inc()
		s.logger.Error().Err(err).Str("customer_id", id).Msg("failed to delete customer")
		return fmt.Errorf("delete customer: %w", err)
	}

	metrics.CustomerOperationsTotal.WithLabelValues("delete", "ok").Inc()
	s.logger.Info().Str("customer_id", id).Msg("customer deleted")
	return nil
}

func applyPatch(c *domain.Customer, p ports.UpdateCustomerInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, p.Name)
	set(&c.Source, p.Source)
	set(&c.Contact, p.Contact)
	set(&c.Requirement, p.Requirement)
	set(&c.LastMeeting, p.LastMeeting)
	set(&c.NextFollowup, p.NextFollowup)
	set(&c.Stage, p.Stage)
}

func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// generateCustomerID returns an id of the form cusXXXXXXXX (8 hex chars).
func generateCustomerID() string {
	return "cus" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
