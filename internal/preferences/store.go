// Package preferences persists user interface preferences across sessions.
package preferences

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "preferences"

	// ThemeKey is the fixed key the theme preference is stored under
	ThemeKey = "theme"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Store is a bbolt-backed key-value store for preferences
type Store struct {
	db *bolt.DB
}

// Open opens or creates the preference file at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create preferences directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create preferences bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the stored value for key and whether it exists
func (s *Store) Get(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errors.New("preferences bucket missing")
		}
		if v := b.Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return string(value), true, nil
}

// Set stores value under key
func (s *Store) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errors.New("preferences bucket missing")
		}
		return b.Put([]byte(key), []byte(value))
	})
}

// LoadTheme returns the stored theme. found is false when nothing was saved yet.
// Any stored value other than "light" means dark.
func (s *Store) LoadTheme() (dark bool, found bool, err error) {
	value, ok, err := s.Get(ThemeKey)
	if err != nil {
		return true, false, fmt.Errorf("failed to load theme: %w", err)
	}
	if !ok {
		return true, false, nil
	}
	return value != ThemeLight, true, nil
}

// SaveTheme persists the theme preference
func (s *Store) SaveTheme(dark bool) error {
	value := ThemeLight
	if dark {
		value = ThemeDark
	}
	if err := s.Set(ThemeKey, value); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
