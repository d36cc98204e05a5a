package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/adapter/repository/memory"
	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/usecase"
	"github.com/arefin/diamondledger/internal/usecase/mocks"
)

type depositFixture struct {
	*ledgerFixture
	store    *memory.DepositStore
	deposits *usecase.DepositUseCase
}

func newDepositFixture() *depositFixture {
	f := &depositFixture{
		ledgerFixture: newLedgerFixture(),
		store:         memory.NewDepositStore(),
	}
	f.deposits = usecase.NewDepositUseCase(f.store, f.ledger, mocks.NewMockIDGenerator(), decimal.Decimal{}, zerolog.Nop())
	return f
}

func TestDepositUseCase_Request(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		setup   func(*depositFixture)
		wantErr error
	}{
		{name: "valid request", amount: dec("500")},
		{name: "zero amount", amount: decimal.Zero, wantErr: domain.ErrInvalidAmount},
		{name: "negative amount", amount: dec("-50"), wantErr: domain.ErrInvalidAmount},
		{name: "above maximum", amount: dec("100001"), wantErr: domain.ErrAmountTooLarge},
		{
			name:   "blocked user",
			amount: dec("500"),
			setup: func(f *depositFixture) {
				_, _ = f.accounts.SetBlocked("u1", true)
			},
			wantErr: domain.ErrUserBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDepositFixture()
			if tt.setup != nil {
				tt.setup(f)
			}

			d, err := f.deposits.Request("u1", "User One", "g1", tt.amount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Status != domain.DepositPending {
				t.Errorf("status = %q, want pending", d.Status)
			}
			if d.ID == "" {
				t.Error("deposit id missing")
			}
		})
	}
}

func TestDepositUseCase_ApproveCreditsAndSettlesDue(t *testing.T) {
	f := newDepositFixture()
	ctx := context.Background()

	// The user owes 2300; approving a 3000 deposit sweeps the due and
	// leaves 700 free.
	f.approvedEntry(t, "g1", "u1", 1000, "2.3")

	d, err := f.deposits.Request("u1", "User One", "g1", dec("3000"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	result, err := f.deposits.Approve(ctx, d.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	mustEqual(t, result.BalanceBefore, decimal.Zero, "balance before")
	mustEqual(t, result.AutoDeducted, dec("2300"), "auto deducted")
	mustEqual(t, result.NewBalance, dec("700"), "new balance")
	if result.Deposit.Status != domain.DepositCompleted {
		t.Errorf("status = %q, want completed", result.Deposit.Status)
	}

	balance, _ := f.ledger.Balance("u1")
	mustEqual(t, balance, dec("700"), "ledger balance")

	if !f.locks.Balanced("u1") {
		t.Error("user lock not released")
	}
}

func TestDepositUseCase_ManualRecordFollowsAutoDeductions(t *testing.T) {
	f := newDepositFixture()
	ctx := context.Background()

	f.approvedEntry(t, "g1", "u1", 100, "2.3")

	d, err := f.deposits.Request("u1", "", "g1", dec("1000"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.deposits.Approve(ctx, d.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// One auto row for the swept due, then the manual deposit record. The
	// ordering matters: the sweep must never see its own deposit as paid.
	txns, err := f.ledger.Transactions(domain.TransactionFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions = %d, want 2", len(txns))
	}
	if txns[0].Type != domain.TransactionAuto {
		t.Errorf("first record type = %q, want auto", txns[0].Type)
	}
	if txns[1].Type != domain.TransactionManual {
		t.Errorf("second record type = %q, want manual", txns[1].Type)
	}
	if txns[1].ID <= txns[0].ID {
		t.Errorf("manual id %d not after auto id %d", txns[1].ID, txns[0].ID)
	}

	// Paid reflects only the auto row.
	paid, _ := f.ledger.Paid("u1", "g1")
	mustEqual(t, paid, dec("230"), "paid")
}

func TestDepositUseCase_ApproveMatchingPicksOldest(t *testing.T) {
	f := newDepositFixture()
	ctx := context.Background()

	first, err := f.deposits.Request("u1", "", "", dec("500"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.deposits.Request("u1", "", "", dec("500")); err != nil {
		t.Fatalf("request: %v", err)
	}

	result, err := f.deposits.ApproveMatching(ctx, "u1", dec("500"))
	if err != nil {
		t.Fatalf("approve matching: %v", err)
	}
	if result.Deposit.ID != first.ID {
		t.Errorf("approved id = %s, want oldest %s", result.Deposit.ID, first.ID)
	}

	if _, err := f.deposits.ApproveMatching(ctx, "u1", dec("999")); !errors.Is(err, domain.ErrDepositNotFound) {
		t.Errorf("no match error = %v, want ErrDepositNotFound", err)
	}
}

func TestDepositUseCase_ApproveIsSingleShot(t *testing.T) {
	f := newDepositFixture()
	ctx := context.Background()

	d, err := f.deposits.Request("u1", "", "", dec("100"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.deposits.Approve(ctx, d.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// A second approval must not credit again.
	if _, err := f.deposits.Approve(ctx, d.ID); !errors.Is(err, domain.ErrDepositNotFound) {
		t.Errorf("second approve error = %v, want ErrDepositNotFound", err)
	}
	balance, _ := f.ledger.Balance("u1")
	mustEqual(t, balance, dec("100"), "balance credited once")
}

func TestDepositUseCase_ConcurrentApprovalCreditsOnce(t *testing.T) {
	f := newDepositFixture()
	ctx := context.Background()

	d, err := f.deposits.Request("u1", "", "", dec("100"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	// Hold both approvers at the lock until each has passed the pending
	// check, then admit them one at a time. The loser must find the
	// deposit already claimed once it gets in.
	var gate sync.WaitGroup
	gate.Add(2)
	var userMu sync.Mutex
	f.locks.AcquireFunc = func(ctx context.Context, key string) error {
		gate.Done()
		gate.Wait()
		userMu.Lock()
		return nil
	}
	f.locks.ReleaseFunc = func(key string) { userMu.Unlock() }

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.deposits.Approve(ctx, d.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var approved, gone int
	for err := range errs {
		switch {
		case err == nil:
			approved++
		case errors.Is(err, domain.ErrDepositNotFound):
			gone++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if approved != 1 || gone != 1 {
		t.Fatalf("approvals = %d, not-found = %d, want exactly one of each", approved, gone)
	}

	balance, _ := f.ledger.Balance("u1")
	mustEqual(t, balance, dec("100"), "balance credited once")

	manual, err := f.txns.List(domain.TransactionFilter{UserID: "u1", Type: domain.TransactionManual})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(manual) != 1 {
		t.Errorf("manual records = %d, want 1", len(manual))
	}

	if got, _ := f.store.Get(d.ID); got.Status != domain.DepositCompleted {
		t.Errorf("deposit status = %q, want completed", got.Status)
	}
}

func TestDepositUseCase_RejectHasNoLedgerEffect(t *testing.T) {
	f := newDepositFixture()

	d, err := f.deposits.Request("u1", "", "", dec("250"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	rejected, err := f.deposits.Reject(d.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.DepositRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}

	balance, _ := f.ledger.Balance("u1")
	mustEqual(t, balance, decimal.Zero, "balance after rejection")

	if _, err := f.deposits.Reject(d.ID); !errors.Is(err, domain.ErrDepositNotFound) {
		t.Errorf("double reject error = %v, want ErrDepositNotFound", err)
	}
}

func TestDepositUseCase_Stats(t *testing.T) {
	f := newDepositFixture()
	ctx := context.Background()

	a, _ := f.deposits.Request("u1", "", "", dec("100"))
	b, _ := f.deposits.Request("u2", "", "", dec("200"))
	if _, err := f.deposits.Request("u3", "", "", dec("50")); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.deposits.Approve(ctx, a.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.deposits.Approve(ctx, b.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	stats := f.deposits.Stats()
	if stats.Completed != 2 {
		t.Errorf("completed = %d, want 2", stats.Completed)
	}
	mustEqual(t, stats.TotalDeposited, dec("300"), "total deposited")
	if stats.UniqueUsers != 2 {
		t.Errorf("unique users = %d, want 2", stats.UniqueUsers)
	}
	if stats.Pending != 1 {
		t.Errorf("pending = %d, want 1", stats.Pending)
	}
	mustEqual(t, stats.PendingAmount, dec("50"), "pending amount")
}
