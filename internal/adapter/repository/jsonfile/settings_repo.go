package jsonfile

import (
	"sync"
	"time"

	"github.com/arefin/diamondledger/internal/domain"
)

const settingsFile = "settings.json"

// SettingsRepository persists the diamond-system switches.
type SettingsRepository struct {
	mu    sync.Mutex
	store *Store
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(store *Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

func (r *SettingsRepository) load() (*domain.Settings, error) {
	s := &domain.Settings{}
	err := r.store.read(settingsFile, s, func() {
		*s = domain.Settings{
			StockEnabled: true,
			OffNotice:    domain.DefaultOffNotice,
			UpdatedAt:    time.Now().UTC(),
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the current settings.
func (r *SettingsRepository) Get() (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Update applies fn to the settings and persists the result.
func (r *SettingsRepository) Update(fn func(*domain.Settings) error) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load()
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.UpdatedAt = time.Now().UTC()
	if err := r.store.write(settingsFile, s); err != nil {
		return nil, err
	}
	return s, nil
}
