package usecase

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/arefin/diamondledger/internal/domain"
)

// SettingsUseCase manages the diamond-system switches: the on/off state,
// the shared stock counter, and the notice shown while the system is off.
type SettingsUseCase struct {
	settings SettingsRepository
	log      zerolog.Logger
}

// NewSettingsUseCase creates a new SettingsUseCase.
func NewSettingsUseCase(settings SettingsRepository, log zerolog.Logger) *SettingsUseCase {
	return &SettingsUseCase{settings: settings, log: log}
}

// Status returns the current settings.
func (uc *SettingsUseCase) Status() (*domain.Settings, error) {
	return uc.settings.Get()
}

// SetEnabled turns the diamond system on or off.
func (uc *SettingsUseCase) SetEnabled(enabled bool) (*domain.Settings, error) {
	s, err := uc.settings.Update(func(s *domain.Settings) error {
		s.StockEnabled = enabled
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Bool("enabled", enabled).Msg("diamond system toggled")
	return s, nil
}

// SetStock replaces the stock counter. Negative values are clamped to zero.
func (uc *SettingsUseCase) SetStock(stock int64) (*domain.Settings, error) {
	if stock < 0 {
		stock = 0
	}
	return uc.settings.Update(func(s *domain.Settings) error {
		s.Stock = stock
		return nil
	})
}

// AddStock increments the stock counter, flooring at zero for negative
// adjustments.
func (uc *SettingsUseCase) AddStock(delta int64) (*domain.Settings, error) {
	return uc.settings.Update(func(s *domain.Settings) error {
		s.Stock += delta
		if s.Stock < 0 {
			s.Stock = 0
		}
		return nil
	})
}

// SetOffNotice replaces the message users see while the system is off. An
// empty notice restores the default.
func (uc *SettingsUseCase) SetOffNotice(notice string) (*domain.Settings, error) {
	notice = strings.TrimSpace(notice)
	if notice == "" {
		notice = domain.DefaultOffNotice
	}
	return uc.settings.Update(func(s *domain.Settings) error {
		s.OffNotice = notice
		return nil
	})
}
