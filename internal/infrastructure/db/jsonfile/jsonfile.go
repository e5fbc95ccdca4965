// Package jsonfile persists customer records in a single JSON array file.
//
// The in-memory slice is authoritative and guarded by one RWMutex. Every
// mutation serialises the full set to a temp file in the target directory,
// fsyncs it and renames it over the data file, so a crash or failed write
// never leaves a truncated file behind.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

// Options controls how a data file is opened.
type Options struct {
	// Seed writes the sample record instead of an empty array when the
	// file does not exist yet.
	Seed bool
}

// decode parses the file content. Empty or malformed content is reported
// as ok=false so the caller can treat it as an empty store.
func decode(data []byte) (customers []domain.Customer, ok bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Customer{}, false
	}
	if err := json.Unmarshal(data, &customers); err != nil {
		return []domain.Customer{}, false
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	return customers, true
}

func encode(customers []domain.Customer) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if customers == nil {
		customers = []domain.Customer{}
	}
	if err := enc.Encode(customers); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic replaces path with data via a synced temp file and rename.
// rename is injectable so tests can simulate a failing replace.
func writeAtomic(path string, data []byte, rename func(oldpath, newpath string) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = rename(tmpName, path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// ensureFile creates the parent directory and, if the data file is absent,
// writes the initial content. It reports whether the file was created.
func ensureFile(path string, opts Options) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("%w: create data dir: %v", domain.ErrPersistence, err)
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: stat data file: %v", domain.ErrPersistence, err)
	}

	initial := []domain.Customer{}
	if opts.Seed {
		initial = append(initial, domain.SampleCustomer())
	}
	data, err := encode(initial)
	if err != nil {
		return false, fmt.Errorf("%w: encode seed: %v", domain.ErrPersistence, err)
	}
	if err := writeAtomic(path, data, os.Rename); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return true, nil
}

// Seed writes the sample data set to path. Unless force is set an existing
// file is left untouched and Seed reports false.
func Seed(path string, force bool) (bool, error) {
	if !force {
		return ensureFile(path, Options{Seed: true})
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("%w: create data dir: %v", domain.ErrPersistence, err)
	}
	data, err := encode([]domain.Customer{domain.SampleCustomer()})
	if err != nil {
		return false, err
	}
	if err := writeAtomic(path, data, os.Rename); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return true, nil
}
