package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

var _ ports.CustomerRepository = (*CustomerRepository)(nil)

// CustomerRepository implements ports.CustomerRepository on a JSON file.
type CustomerRepository struct {
	path string
	log  zerolog.Logger

	mu        sync.RWMutex
	customers []domain.Customer

	rename func(oldpath, newpath string) error
}

// Open loads the data file at path, creating it first when absent. A file
// that is empty or not a JSON array is treated as an empty store and is
// only overwritten by the next successful mutation.
func Open(path string, opts Options, log zerolog.Logger) (*CustomerRepository, error) {
	log = log.With().Str("component", "customer_store").Str("path", path).Logger()

	created, err := ensureFile(path, opts)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info().Bool("seeded", opts.Seed).Msg("data file created")
	}

	r := &CustomerRepository{path: path, log: log, rename: os.Rename}
	r.customers = r.load()
	return r, nil
}

func (r *CustomerRepository) load() []domain.Customer {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log.Warn().Err(err).Msg("data file unreadable, starting empty")
		}
		return []domain.Customer{}
	}
	customers, ok := decode(data)
	if !ok && len(data) > 0 {
		r.log.Warn().Int("bytes", len(data)).Msg("data file is not a JSON array, starting empty")
	}
	return customers
}

// persist writes next to disk and, only on success, makes it the
// authoritative set. Callers must hold the write lock.
func (r *CustomerRepository) persist(next []domain.Customer) error {
	data, err := encode(next)
	if err != nil {
		return fmt.Errorf("%w: encode customers: %v", domain.ErrPersistence, err)
	}
	if err := writeAtomic(r.path, data, r.rename); err != nil {
		r.log.Error().Err(err).Msg("failed to persist customers")
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	r.customers = next
	return nil
}

func (r *CustomerRepository) indexOf(id string) int {
	for i := range r.customers {
		if r.customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *CustomerRepository) List(_ context.Context) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Customer, len(r.customers))
	copy(out, r.customers)
	return out, nil
}

func (r *CustomerRepository) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrCustomerNotFound
	}
	c := r.customers[i]
	return &c, nil
}

func (r *CustomerRepository) Search(_ context.Context, query string) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Customer{}
	for _, c := range r.customers {
		if c.Matches(query) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CustomerRepository) Create(_ context.Context, c domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c.ID) >= 0 {
		return domain.ErrDuplicateCustomer
	}

	next := make([]domain.Customer, len(r.customers), len(r.customers)+1)
	copy(next, r.customers)
	next = append(next, c)
	return r.persist(next)
}

func (r *CustomerRepository) Update(_ context.Context, id string, mutate ports.CustomerMutator) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrCustomerNotFound
	}

	updated := r.customers[i]
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.ID = id

	next := make([]domain.Customer, len(r.customers))
	copy(next, r.customers)
	next[i] = updated
	if err := r.persist(next); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *CustomerRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrCustomerNotFound
	}

	next := make([]domain.Customer, 0, len(r.customers)-1)
	next = append(next, r.customers[:i]...)
	next = append(next, r.customers[i+1:]...)
	return r.persist(next)
}

// Check verifies the data directory still exists and is a directory.
func (r *CustomerRepository) Check(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(r.path))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrPersistence, filepath.Dir(r.path))
	}
	return nil
}

// Len returns the number of stored records.
func (r *CustomerRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}
