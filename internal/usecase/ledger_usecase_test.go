package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/infrastructure/lock"
	"github.com/arefin/diamondledger/internal/usecase"
	"github.com/arefin/diamondledger/internal/usecase/mocks"
)

type ledgerFixture struct {
	accounts *mocks.MockAccountRepository
	txns     *mocks.MockTransactionRepository
	groups   *mocks.MockGroupRepository
	locks    *mocks.MockUserLocker
	ledger   *usecase.LedgerUseCase
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		accounts: mocks.NewMockAccountRepository(),
		txns:     mocks.NewMockTransactionRepository(),
		groups:   mocks.NewMockGroupRepository(),
		locks:    mocks.NewMockUserLocker(),
	}
	f.ledger = usecase.NewLedgerUseCase(f.accounts, f.txns, f.groups, f.locks, zerolog.Nop())
	return f
}

// approvedEntry seeds an approved order so the user owes diamonds*rate in
// the group.
func (f *ledgerFixture) approvedEntry(t *testing.T, groupID, userID string, diamonds int64, rate string) {
	t.Helper()
	e, err := f.groups.AddEntry(groupID, "", &domain.Entry{
		UserID:   userID,
		Diamonds: diamonds,
		Rate:     decimal.RequireFromString(rate),
	})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if _, err := f.groups.ApproveEntry(groupID, e.ID); err != nil {
		t.Fatalf("approve entry: %v", err)
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustEqual(t *testing.T, got, want decimal.Decimal, label string) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func TestLedgerUseCase_DepositCoversDue(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	// 1000 diamonds at 2.3 approved: the user owes 2300.
	f.approvedEntry(t, "g1", "u1", 1000, "2.3")

	due, err := f.ledger.ApprovedDue("u1", "g1")
	if err != nil {
		t.Fatalf("approved due: %v", err)
	}
	mustEqual(t, due, dec("2300"), "due")

	// A 3000 credit settles the full due and leaves 700 free.
	if _, err := f.accounts.AdjustBalance("u1", dec("3000")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	result, err := f.ledger.ApplyAutoDeduction(ctx, "u1", "User One")
	if err != nil {
		t.Fatalf("auto deduction: %v", err)
	}

	mustEqual(t, result.Deducted, dec("2300"), "deducted")
	mustEqual(t, result.NewBalance, dec("700"), "new balance")

	paid, err := f.ledger.Paid("u1", "g1")
	if err != nil {
		t.Fatalf("paid: %v", err)
	}
	mustEqual(t, paid, dec("2300"), "paid")

	remaining, err := f.ledger.RemainingDue("u1", "g1")
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	mustEqual(t, remaining, decimal.Zero, "remaining due")

	if !f.locks.Balanced("u1") {
		t.Error("user lock not released")
	}
}

func TestLedgerUseCase_PartialPaymentAcrossGroups(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	// 2300 owed in each of two groups; 2300 on balance settles g1 first
	// (groups walk in id order), then 1700 pays g2 down to 600.
	f.approvedEntry(t, "g1", "u1", 1000, "2.3")
	f.approvedEntry(t, "g2", "u1", 1000, "2.3")

	if _, err := f.accounts.AdjustBalance("u1", dec("2300")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	result, err := f.ledger.ApplyAutoDeduction(ctx, "u1", "")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	mustEqual(t, result.Deducted, dec("2300"), "first deduction")
	mustEqual(t, result.NewBalance, decimal.Zero, "balance after first pass")

	remaining, _ := f.ledger.RemainingDue("u1", "g1")
	mustEqual(t, remaining, decimal.Zero, "g1 remaining")
	remaining, _ = f.ledger.RemainingDue("u1", "g2")
	mustEqual(t, remaining, dec("2300"), "g2 remaining")

	if _, err := f.accounts.AdjustBalance("u1", dec("1700")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	result, err = f.ledger.ApplyAutoDeduction(ctx, "u1", "")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	mustEqual(t, result.Deducted, dec("1700"), "second deduction")

	remaining, _ = f.ledger.RemainingDue("u1", "g2")
	mustEqual(t, remaining, dec("600"), "g2 remaining after second pass")

	summary, err := f.ledger.AllGroupsRemainingDue("u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	mustEqual(t, summary.Total, dec("600"), "total remaining")
	if len(summary.Groups) != 1 || summary.Groups[0].GroupID != "g2" {
		t.Errorf("summary groups = %+v, want only g2", summary.Groups)
	}
}

func TestLedgerUseCase_DeductionConservation(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	f.approvedEntry(t, "g1", "u1", 500, "2.3")
	f.approvedEntry(t, "g2", "u1", 200, "3.0")
	f.approvedEntry(t, "g3", "u1", 100, "2.5")

	if _, err := f.accounts.AdjustBalance("u1", dec("1500")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	before, _ := f.ledger.Balance("u1")

	result, err := f.ledger.ApplyAutoDeduction(ctx, "u1", "")
	if err != nil {
		t.Fatalf("auto deduction: %v", err)
	}

	// The single balance debit must equal the sum of per-group records.
	perGroupSum := decimal.Zero
	for _, g := range result.PerGroup {
		perGroupSum = perGroupSum.Add(g.Amount)
	}
	mustEqual(t, perGroupSum, result.Deducted, "per-group sum vs deducted")

	after, _ := f.ledger.Balance("u1")
	mustEqual(t, before.Sub(after), result.Deducted, "balance decrease vs deducted")

	// All recorded auto rows across groups must also sum to the deduction.
	recorded := decimal.Zero
	for _, groupID := range []string{"g1", "g2", "g3"} {
		paid, _ := f.ledger.Paid("u1", groupID)
		recorded = recorded.Add(paid)
	}
	mustEqual(t, recorded, result.Deducted, "recorded auto rows vs deducted")
}

func TestLedgerUseCase_DeductionIsIdempotentWhenSettled(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	f.approvedEntry(t, "g1", "u1", 100, "2.3")
	if _, err := f.accounts.AdjustBalance("u1", dec("1000")); err != nil {
		t.Fatalf("credit: %v", err)
	}

	first, err := f.ledger.ApplyAutoDeduction(ctx, "u1", "")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	mustEqual(t, first.Deducted, dec("230"), "first deduction")

	// Nothing left to pay: the second pass must not move money or append
	// records.
	second, err := f.ledger.ApplyAutoDeduction(ctx, "u1", "")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	mustEqual(t, second.Deducted, decimal.Zero, "second deduction")
	mustEqual(t, second.NewBalance, dec("770"), "balance unchanged")

	txns, err := f.ledger.Transactions(domain.TransactionFilter{UserID: "u1", Type: domain.TransactionAuto})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("auto transactions = %d, want 1", len(txns))
	}
}

func TestLedgerUseCase_NoDeductionWithoutBalance(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	f.approvedEntry(t, "g1", "u1", 100, "2.3")

	result, err := f.ledger.ApplyAutoDeduction(ctx, "u1", "")
	if err != nil {
		t.Fatalf("auto deduction: %v", err)
	}
	mustEqual(t, result.Deducted, decimal.Zero, "deducted")
	mustEqual(t, result.TotalDue, dec("230"), "total due reported")
}

func TestLedgerUseCase_DueOverridePrecedence(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	f.approvedEntry(t, "g1", "u1", 1000, "2.3")
	f.approvedEntry(t, "g2", "u1", 500, "2.3")

	override := dec("100")
	if err := f.ledger.SetDueOverride(ctx, "u1", &override); err != nil {
		t.Fatalf("set override: %v", err)
	}

	// The override is global: every group now reports it, regardless of
	// that group's own entries.
	for _, groupID := range []string{"g1", "g2", "g3"} {
		due, err := f.ledger.ApprovedDue("u1", groupID)
		if err != nil {
			t.Fatalf("due %s: %v", groupID, err)
		}
		mustEqual(t, due, override, "due for "+groupID)
	}

	// Clearing restores entry-derived dues.
	if err := f.ledger.SetDueOverride(ctx, "u1", nil); err != nil {
		t.Fatalf("clear override: %v", err)
	}
	due, _ := f.ledger.ApprovedDue("u1", "g1")
	mustEqual(t, due, dec("2300"), "due after clear")

	negative := dec("-5")
	if err := f.ledger.SetDueOverride(ctx, "u1", &negative); err != domain.ErrInvalidAmount {
		t.Errorf("negative override error = %v, want ErrInvalidAmount", err)
	}
}

func TestLedgerUseCase_BalanceFloor(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	if _, err := f.ledger.AdjustBalance(ctx, "u1", dec("100")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	balance, err := f.ledger.AdjustBalance(ctx, "u1", dec("-500"))
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	mustEqual(t, balance, decimal.Zero, "over-debited balance")

	balance, err = f.ledger.SetBalance(ctx, "u1", dec("-10"))
	if err != nil {
		t.Fatalf("set balance: %v", err)
	}
	mustEqual(t, balance, decimal.Zero, "negative set balance")
}

func TestLedgerUseCase_RecordTransactionValidation(t *testing.T) {
	f := newLedgerFixture()

	if _, err := f.ledger.RecordTransaction("u1", "", "g1", decimal.Zero, domain.TransactionManual); err != domain.ErrInvalidAmount {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}

	tx, err := f.ledger.RecordTransaction("u1", "", "g1", dec("50"), domain.TransactionManual)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if tx.UserName != "u1" {
		t.Errorf("user name fallback = %q, want user id", tx.UserName)
	}
	if tx.Status != domain.TransactionApproved {
		t.Errorf("status = %q, want approved", tx.Status)
	}
}

func TestLedgerUseCase_ManualRecordsNeverCountAsPaid(t *testing.T) {
	f := newLedgerFixture()

	f.approvedEntry(t, "g1", "u1", 100, "2.3")
	if _, err := f.ledger.RecordTransaction("u1", "", "g1", dec("1000"), domain.TransactionManual); err != nil {
		t.Fatalf("record: %v", err)
	}

	paid, err := f.ledger.Paid("u1", "g1")
	if err != nil {
		t.Fatalf("paid: %v", err)
	}
	mustEqual(t, paid, decimal.Zero, "paid with only manual records")

	remaining, _ := f.ledger.RemainingDue("u1", "g1")
	mustEqual(t, remaining, dec("230"), "remaining due")
}

func TestLedgerUseCase_ClearAutoDeductionsResetsPaid(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	f.approvedEntry(t, "g1", "u1", 100, "2.3")
	if _, err := f.accounts.AdjustBalance("u1", dec("230")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := f.ledger.ApplyAutoDeduction(ctx, "u1", ""); err != nil {
		t.Fatalf("auto deduction: %v", err)
	}

	removed, err := f.ledger.ClearAutoDeductions(ctx, "u1", "g1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	// The due reopens because nothing counts as paid anymore.
	remaining, _ := f.ledger.RemainingDue("u1", "g1")
	mustEqual(t, remaining, dec("230"), "remaining after clear")
}

func TestLedgerUseCase_Snapshot(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	f.approvedEntry(t, "g1", "u1", 1000, "2.3")
	if _, err := f.accounts.AdjustBalance("u1", dec("3000")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := f.ledger.ApplyAutoDeduction(ctx, "u1", ""); err != nil {
		t.Fatalf("auto deduction: %v", err)
	}

	snap, err := f.ledger.Snapshot("u1", "g1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	mustEqual(t, snap.Balance, dec("700"), "balance")
	mustEqual(t, snap.Due, dec("2300"), "due")
	mustEqual(t, snap.Paid, dec("2300"), "paid")
	mustEqual(t, snap.RemainingDue, decimal.Zero, "remaining")
	mustEqual(t, snap.Available, dec("700"), "available")
	if snap.LastDeduction.CreatedAt == nil {
		t.Error("last deduction time missing")
	}
	if len(snap.Entries) != 1 {
		t.Errorf("approved entries = %d, want 1", len(snap.Entries))
	}
}

func TestLedgerUseCase_LastDeductionEmpty(t *testing.T) {
	f := newLedgerFixture()

	last, err := f.ledger.LastAutoDeduction("u1", "g1")
	if err != nil {
		t.Fatalf("last deduction: %v", err)
	}
	if last.CreatedAt != nil {
		t.Errorf("created at = %v, want nil", last.CreatedAt)
	}
	mustEqual(t, last.Amount, decimal.Zero, "amount")
}

// TestLedgerUseCase_ConcurrentDeductionsSerialize runs many simultaneous
// deduction passes against one user through the real keyed lock and checks
// that exactly the owed amount is paid once.
func TestLedgerUseCase_ConcurrentDeductionsSerialize(t *testing.T) {
	accounts := mocks.NewMockAccountRepository()
	txns := mocks.NewMockTransactionRepository()
	groups := mocks.NewMockGroupRepository()
	locks := lock.NewKeyed(5 * time.Second)
	ledger := usecase.NewLedgerUseCase(accounts, txns, groups, locks, zerolog.Nop())

	e, err := groups.AddEntry("g1", "", &domain.Entry{UserID: "u1", Diamonds: 1000, Rate: dec("2.3")})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if _, err := groups.ApproveEntry("g1", e.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := accounts.AdjustBalance("u1", dec("5000")); err != nil {
		t.Fatalf("credit: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.ApplyAutoDeduction(context.Background(), "u1", ""); err != nil {
				t.Errorf("auto deduction: %v", err)
			}
		}()
	}
	wg.Wait()

	paid, _ := ledger.Paid("u1", "g1")
	mustEqual(t, paid, dec("2300"), "paid after concurrent passes")

	balance, _ := ledger.Balance("u1")
	mustEqual(t, balance, dec("2700"), "balance after concurrent passes")
}

func TestLedgerUseCase_LockTimeoutSurfaces(t *testing.T) {
	f := newLedgerFixture()
	f.locks.AcquireFunc = func(ctx context.Context, key string) error {
		return domain.ErrLockTimeout
	}

	if _, err := f.ledger.ApplyAutoDeduction(context.Background(), "u1", ""); err != domain.ErrLockTimeout {
		t.Errorf("error = %v, want ErrLockTimeout", err)
	}
	if _, err := f.ledger.AdjustBalance(context.Background(), "u1", dec("10")); err != domain.ErrLockTimeout {
		t.Errorf("error = %v, want ErrLockTimeout", err)
	}
}
