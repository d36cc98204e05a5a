package usecase_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/usecase"
	"github.com/arefin/diamondledger/internal/usecase/mocks"
)

func newSettingsUseCase() (*usecase.SettingsUseCase, *mocks.MockSettingsRepository) {
	repo := mocks.NewMockSettingsRepository()
	return usecase.NewSettingsUseCase(repo, zerolog.Nop()), repo
}

func TestSettingsUseCase_Toggle(t *testing.T) {
	uc, _ := newSettingsUseCase()

	s, err := uc.SetEnabled(false)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if s.StockEnabled {
		t.Error("system still enabled")
	}

	s, err = uc.SetEnabled(true)
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !s.StockEnabled {
		t.Error("system still disabled")
	}
}

func TestSettingsUseCase_Stock(t *testing.T) {
	uc, _ := newSettingsUseCase()

	s, err := uc.SetStock(500)
	if err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if s.Stock != 500 {
		t.Errorf("stock = %d, want 500", s.Stock)
	}

	s, err = uc.AddStock(-700)
	if err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if s.Stock != 0 {
		t.Errorf("stock = %d, want floor 0", s.Stock)
	}

	s, err = uc.SetStock(-5)
	if err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if s.Stock != 0 {
		t.Errorf("negative set stock = %d, want 0", s.Stock)
	}
}

func TestSettingsUseCase_OffNotice(t *testing.T) {
	uc, _ := newSettingsUseCase()

	s, err := uc.SetOffNotice("  maintenance until 6pm  ")
	if err != nil {
		t.Fatalf("set notice: %v", err)
	}
	if s.OffNotice != "maintenance until 6pm" {
		t.Errorf("notice = %q, want trimmed text", s.OffNotice)
	}

	// Blank restores the default.
	s, err = uc.SetOffNotice("   ")
	if err != nil {
		t.Fatalf("reset notice: %v", err)
	}
	if s.OffNotice != domain.DefaultOffNotice {
		t.Errorf("notice = %q, want default", s.OffNotice)
	}
}
