package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Hooks lets the caller observe store health without coupling the
// persistence layer to a metrics registry.
type Hooks struct {
	OnSelfHeal  func(store string)
	OnWriteFail func(store string)
}

// Store is the shared flat-file JSON persistence for all repositories.
// Writes are atomic (write-temp-then-rename) and retried with exponential
// backoff on transient failures. Loads are tolerant: a missing, empty, or
// corrupt file resets to the default shape and rewrites it, logged at warn.
// Corruption is treated as unrecoverable-but-survivable, never fatal.
type Store struct {
	dir   string
	log   zerolog.Logger
	hooks Hooks
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string, log zerolog.Logger, hooks Hooks) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, log: log, hooks: hooks}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// read loads name into v. When the file is missing, empty, or unparsable,
// reset is invoked to put v into its default shape, the default is written
// back, and the load still succeeds.
func (s *Store) read(name string, v any, reset func()) error {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("file", name).Msg("store read failed, using default")
		}
		return s.heal(name, v, reset)
	}
	if len(raw) == 0 {
		return s.heal(name, v, reset)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("store parse failed, repairing")
		return s.heal(name, v, reset)
	}
	return nil
}

func (s *Store) heal(name string, v any, reset func()) error {
	reset()
	if s.hooks.OnSelfHeal != nil {
		s.hooks.OnSelfHeal(name)
	}
	return s.write(name, v)
}

// write marshals v and atomically replaces name. Transient failures are
// retried with exponential backoff; the last error is returned after the
// budget is spent.
func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 2 * time.Second

	err = backoff.Retry(func() error {
		return s.replace(name, data)
	}, b)
	if err != nil {
		if s.hooks.OnWriteFail != nil {
			s.hooks.OnWriteFail(name)
		}
		s.log.Error().Err(err).Str("file", name).Msg("store write failed")
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) replace(name string, data []byte) error {
	target := s.path(name)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
