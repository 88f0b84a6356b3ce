// Package prefs implements the local preference store. A single JSON file
// holds the stay-logged-in flag, the persisted session fields and the
// presentation preferences, mirroring a mobile platform's user-defaults
// store.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultDirName  = "quoted"
	defaultFileName = "preferences.json"

	filePerm = 0o600
	dirPerm  = 0o755
)

// Config contains configuration for the store.
type Config struct {
	// FilePath overrides the default location under the user config
	// directory.
	FilePath string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Store is a file-backed key-value preference store. Values are held in
// memory and the whole file is rewritten atomically on every mutation, so
// a crash never leaves a half-written file behind.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	values map[string]any
}

// Open loads the preference file, creating an empty store when the file
// does not exist yet. A corrupt file is discarded rather than blocking
// startup; preferences are reconstructible state.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := cfg.FilePath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}

		path = filepath.Join(dir, defaultDirName, defaultFileName)
	}

	s := &Store{
		path:   path,
		logger: logger,
		values: make(map[string]any),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("reading preference file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		s.logger.Warn("preference file unreadable, starting fresh",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		s.values = make(map[string]any)
	}

	return nil
}

// save writes the store to disk via a temp file and rename.
// The caller must hold mu.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("creating preference dir: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("writing preference file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing preference file: %w", err)
	}

	return nil
}

// set stores values and persists in one write.
func (s *Store) set(pairs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range pairs {
		s.values[k] = v
	}

	return s.save()
}

// remove deletes keys and persists in one write.
func (s *Store) remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.values, k)
	}

	return s.save()
}

// Name returns the health check name for the store.
// Implements ports.HealthChecker.
func (s *Store) Name() string {
	return "prefs"
}

// Check verifies the preference file is writable.
// Implements ports.HealthChecker.
func (s *Store) Check(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save()
}

func (s *Store) getString(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key].(string); ok {
		return v
	}

	return ""
}

func (s *Store) getBool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key].(bool); ok {
		return v
	}

	return false
}

// getFloat returns the stored number. JSON numbers decode as float64.
func (s *Store) getFloat(key string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key].(float64); ok {
		return v
	}

	return 0
}
