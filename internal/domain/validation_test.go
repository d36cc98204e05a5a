package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"positive", "10", nil},
		{"fractional", "0.01", nil},
		{"zero", "0", ErrInvalidAmount},
		{"negative", "-5", ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAmount(%s) = %v, want %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDepositAmount(t *testing.T) {
	max := decimal.NewFromInt(100000)

	if err := ValidateDepositAmount(decimal.NewFromInt(100000), max); err != nil {
		t.Errorf("amount at max should pass, got %v", err)
	}
	if err := ValidateDepositAmount(decimal.NewFromInt(100001), max); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("amount over max = %v, want ErrAmountTooLarge", err)
	}
	if err := ValidateDepositAmount(decimal.Zero, max); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount = %v, want ErrInvalidAmount", err)
	}
	// zero max disables the ceiling
	if err := ValidateDepositAmount(decimal.NewFromInt(999999), decimal.Zero); err != nil {
		t.Errorf("no ceiling should pass, got %v", err)
	}
}

func TestValidateDiamonds(t *testing.T) {
	if err := ValidateDiamonds(1000); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDiamonds(0); !errors.Is(err, ErrInvalidDiamonds) {
		t.Errorf("zero diamonds = %v, want ErrInvalidDiamonds", err)
	}
	if err := ValidateDiamonds(-3); !errors.Is(err, ErrInvalidDiamonds) {
		t.Errorf("negative diamonds = %v, want ErrInvalidDiamonds", err)
	}
	if err := ValidateDiamonds(MaxDiamonds); err != nil {
		t.Errorf("max diamonds should pass, got %v", err)
	}
	if err := ValidateDiamonds(MaxDiamonds + 1); !errors.Is(err, ErrInvalidDiamonds) {
		t.Errorf("over max = %v, want ErrInvalidDiamonds", err)
	}
}

func TestEntryAmount(t *testing.T) {
	e := &Entry{Diamonds: 1000, Rate: decimal.RequireFromString("2.3")}
	if got := e.Amount(); !got.Equal(decimal.RequireFromString("2300")) {
		t.Errorf("Amount() = %s, want 2300", got)
	}
}

func TestAccountApplyDelta(t *testing.T) {
	a := &Account{Balance: decimal.NewFromInt(100)}

	if got := a.ApplyDelta(decimal.NewFromInt(50)); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("credit: got %s, want 150", got)
	}
	if got := a.ApplyDelta(decimal.NewFromInt(-100)); !got.Equal(decimal.Zero) {
		t.Errorf("full debit: got %s, want 0", got)
	}
	// over-debit floors at zero instead of going negative
	if got := a.ApplyDelta(decimal.NewFromInt(-500)); !got.Equal(decimal.Zero) {
		t.Errorf("over-debit: got %s, want 0", got)
	}
}
