package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

func openTemp(t *testing.T, opts Options) (*CustomerRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "customers.json")
	repo, err := Open(path, opts, zerolog.Nop())
	require.NoError(t, err)
	return repo, path
}

func readFile(t *testing.T, path string) []domain.Customer {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []domain.Customer
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestOpen_CreatesEmptyFile(t *testing.T) {
	repo, path := openTemp(t, Options{})

	assert.Empty(t, readFile(t, path))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestOpen_SeedsSampleRecord(t *testing.T) {
	repo, path := openTemp(t, Options{Seed: true})

	stored := readFile(t, path)
	require.Len(t, stored, 1)
	assert.Equal(t, "cus002", stored[0].ID)

	c, err := repo.FindByID(context.Background(), "cus002")
	require.NoError(t, err)
	assert.Equal(t, "FutureForce", c.Name)
}

func TestOpen_ExistingFileNotReseeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"cus1","name":"Acme"}]`), 0o644))

	repo, err := Open(path, Options{Seed: true}, zerolog.Nop())
	require.NoError(t, err)

	list, _ := repo.List(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
}

func TestOpen_CorruptOrEmptyFileIsEmptyStore(t *testing.T) {
	for name, content := range map[string]string{
		"empty":      "",
		"whitespace": "  \n",
		"garbage":    "{not json",
		"object":     `{"id":"x"}`,
		"null":       "null",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "customers.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			repo, err := Open(path, Options{Seed: true}, zerolog.Nop())
			require.NoError(t, err)

			list, err := repo.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, list)

			// The next write replaces the corrupt content with a valid array.
			require.NoError(t, repo.Create(context.Background(), domain.Customer{ID: "cus1", Name: "Acme"}))
			assert.Len(t, readFile(t, path), 1)
		})
	}
}

func TestCreate_PersistsInInsertionOrder(t *testing.T) {
	repo, path := openTemp(t, Options{})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, domain.Customer{ID: fmt.Sprintf("cus%d", i), Name: fmt.Sprintf("c%d", i)}))
	}

	stored := readFile(t, path)
	require.Len(t, stored, 3)
	assert.Equal(t, []string{"cus1", "cus2", "cus3"}, []string{stored[0].ID, stored[1].ID, stored[2].ID})

	// A fresh repository sees the same data.
	reopened, err := Open(path, Options{}, zerolog.Nop())
	require.NoError(t, err)
	list, _ := reopened.List(ctx)
	assert.Equal(t, stored, list)
}

func TestCreate_DuplicateID(t *testing.T) {
	repo, _ := openTemp(t, Options{Seed: true})

	err := repo.Create(context.Background(), domain.Customer{ID: "cus002", Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCustomer)
	assert.Equal(t, 1, repo.Len())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, _ := openTemp(t, Options{})

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestFindByID_ReturnsCopy(t *testing.T) {
	repo, _ := openTemp(t, Options{Seed: true})
	ctx := context.Background()

	c, err := repo.FindByID(ctx, "cus002")
	require.NoError(t, err)
	c.Name = "mutated"

	again, _ := repo.FindByID(ctx, "cus002")
	assert.Equal(t, "FutureForce", again.Name)
}

func TestUpdate_KeepsIDAndPersists(t *testing.T) {
	repo, path := openTemp(t, Options{Seed: true})

	updated, err := repo.Update(context.Background(), "cus002", func(c *domain.Customer) error {
		c.ID = "hijack"
		c.Stage = "closed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cus002", updated.ID)
	assert.Equal(t, "closed", updated.Stage)
	assert.Equal(t, "FutureForce", updated.Name)

	stored := readFile(t, path)
	require.Len(t, stored, 1)
	assert.Equal(t, "cus002", stored[0].ID)
	assert.Equal(t, "closed", stored[0].Stage)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, _ := openTemp(t, Options{})

	_, err := repo.Update(context.Background(), "missing", func(c *domain.Customer) error { return nil })
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestUpdate_MutatorErrorAborts(t *testing.T) {
	repo, path := openTemp(t, Options{Seed: true})
	boom := errors.New("boom")

	_, err := repo.Update(context.Background(), "cus002", func(c *domain.Customer) error {
		c.Stage = "closed"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "demo", readFile(t, path)[0].Stage)

	c, _ := repo.FindByID(context.Background(), "cus002")
	assert.Equal(t, "demo", c.Stage)
}

func TestDelete(t *testing.T) {
	repo, path := openTemp(t, Options{Seed: true})
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.Customer{ID: "cus1", Name: "Acme"}))

	require.NoError(t, repo.Delete(ctx, "cus002"))

	stored := readFile(t, path)
	require.Len(t, stored, 1)
	assert.Equal(t, "cus1", stored[0].ID)
}

func TestDelete_NotFoundLeavesStoreUnchanged(t *testing.T) {
	repo, _ := openTemp(t, Options{Seed: true})

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	assert.Equal(t, 1, repo.Len())
}

func TestSearch(t *testing.T) {
	repo, _ := openTemp(t, Options{})
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.Customer{ID: "a", Name: "FutureForce", Contact: "ff@example.com"}))
	require.NoError(t, repo.Create(ctx, domain.Customer{ID: "b", Name: "Acme", Requirement: "Needs a FUTURE roadmap"}))
	require.NoError(t, repo.Create(ctx, domain.Customer{ID: "c", Name: "Globex", Contact: "+1 555"}))

	got, err := repo.Search(ctx, "future")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	got, _ = repo.Search(ctx, "555")
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	got, _ = repo.Search(ctx, "")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPersistFailure_KeepsPreviousState(t *testing.T) {
	repo, path := openTemp(t, Options{Seed: true})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	repo.rename = func(string, string) error { return errors.New("disk full") }
	ctx := context.Background()

	err = repo.Create(ctx, domain.Customer{ID: "cus1", Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = repo.Update(ctx, "cus002", func(c *domain.Customer) error { c.Stage = "closed"; return nil })
	assert.ErrorIs(t, err, domain.ErrPersistence)

	err = repo.Delete(ctx, "cus002")
	assert.ErrorIs(t, err, domain.ErrPersistence)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	list, _ := repo.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "demo", list[0].Stage)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestConcurrentCreates_NoLostRecords(t *testing.T) {
	repo, path := openTemp(t, Options{})
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Create(ctx, domain.Customer{ID: fmt.Sprintf("cus%03d", i), Name: "c"})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored := readFile(t, path)
	assert.Len(t, stored, n)
	seen := make(map[string]bool, n)
	for _, c := range stored {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.json")

	wrote, err := Seed(path, false)
	require.NoError(t, err)
	assert.True(t, wrote)

	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	wrote, err = Seed(path, false)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Empty(t, readFile(t, path))

	wrote, err = Seed(path, true)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Len(t, readFile(t, path), 1)
}

func TestCheck(t *testing.T) {
	repo, path := openTemp(t, Options{})
	require.NoError(t, repo.Check(context.Background()))

	require.NoError(t, os.RemoveAll(filepath.Dir(path)))
	assert.ErrorIs(t, repo.Check(context.Background()), domain.ErrPersistence)
}

func TestEncode_KeepsNonASCII(t *testing.T) {
	data, err := encode([]domain.Customer{{ID: "cus1", Name: "未来动力"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), "未来动力")
}
