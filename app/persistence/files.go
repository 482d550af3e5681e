package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/go-pkgz/lgr"
)

// Files keeps each key in its own file, location/key.json
type Files struct {
	location string
}

// NewFiles makes file storage for given directory, creates it if missing
func NewFiles(location string) (*Files, error) {
	if location == "" {
		return nil, errors.New("empty location for file storage")
	}
	if err := os.MkdirAll(location, 0o700); err != nil {
		return nil, fmt.Errorf("can't make %s: %w", location, err)
	}
	return &Files{location: location}, nil
}

// Get reads file for the key
func (f *Files) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.fileName(key)) // nolint gosec
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes value to temp file and renames it, so readers never see partial content
func (f *Files) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.location, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if _, e := os.Stat(tmpName); e == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err = os.Rename(tmpName, f.fileName(key)); err != nil {
		return fmt.Errorf("failed to rename %s: %w", key, err)
	}
	log.Printf("[DEBUG] stored %s, %d bytes", f.fileName(key), len(value))
	return nil
}

// Remove deletes file for the key, no error if missing
func (f *Files) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.fileName(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Close does nothing for file storage
func (f *Files) Close() error { return nil }

func (f *Files) String() string {
	return fmt.Sprintf("location:%s", f.location)
}

func (f *Files) fileName(key string) string {
	return filepath.Join(f.location, key+".json")
}
