package chat

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/usecase"
)

const divider = "━━━━━━━━━━━━━━━━━"

// FormatCurrency renders an amount the way the groups expect it: taka sign,
// two decimals.
func FormatCurrency(amount decimal.Decimal) string {
	return "৳" + amount.StringFixed(2)
}

func dashboardText(displayName string, snap usecase.DashboardSnapshot) string {
	var b strings.Builder
	b.WriteString("*💎 DIAMOND DASHBOARD*\n\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "👤 User: %s\n", displayName)
	b.WriteString(divider + "\n\n")

	fmt.Fprintf(&b, "💰 *Your Balance*\n%s\n\n", FormatCurrency(snap.Available))

	b.WriteString(divider + "\n📊 *Payment Summary*\n" + divider + "\n")
	fmt.Fprintf(&b, "💵 Deposited: %s\n", FormatCurrency(snap.Balance))
	fmt.Fprintf(&b, "📉 Due Balance: %s\n", FormatCurrency(snap.RemainingDue))
	fmt.Fprintf(&b, "✅ Available: %s\n", FormatCurrency(snap.Available))
	fmt.Fprintf(&b, "🧾 Total Paid: %s\n", FormatCurrency(snap.Paid))
	if snap.LastDeduction.Amount.IsPositive() {
		fmt.Fprintf(&b, "⚡ Last Auto-Deduct: %s\n", FormatCurrency(snap.LastDeduction.Amount))
	}
	b.WriteString("\n")

	b.WriteString(divider + "\n📋 *ORDER SUMMARY*\n" + divider + "\n")
	if len(snap.Entries) == 0 {
		b.WriteString("No orders yet\n\n")
	} else {
		for i, e := range snap.Entries {
			fmt.Fprintf(&b, "%d. %d💎 @ %s/💎 = %s\n", i+1, e.Diamonds, FormatCurrency(e.Rate), FormatCurrency(e.Amount()))
		}
		b.WriteString("\n")
	}

	b.WriteString(divider + "\n📈 *Current Rate*\n")
	fmt.Fprintf(&b, "%s per 💎\n", FormatCurrency(snap.Rate))
	b.WriteString(divider)
	return b.String()
}

func orderReceivedText(displayName string, e *domain.Entry) string {
	return fmt.Sprintf("✅ *Diamond Order Received*\n\n"+
		"👤 User: %s\n"+
		"💎 Diamonds: %d💎\n"+
		"💰 Amount Due: %s\n"+
		"📊 Rate: %s/💎\n\n"+
		"⏳ Waiting for admin approval...\n"+
		"Order ID: %d",
		displayName, e.Diamonds, FormatCurrency(e.Amount()), FormatCurrency(e.Rate), e.ID)
}

func orderApprovedText(displayName string, e *domain.Entry, deduction usecase.AutoDeductionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Diamond Order Approved*\n\n"+
		"👤 User: %s\n"+
		"💎 Diamonds: %d💎\n"+
		"💰 Amount Due: %s\n"+
		"📊 Rate: %s/💎\n\n"+
		"✓ Status: Approved\n"+
		"Order ID: %d",
		displayName, e.Diamonds, FormatCurrency(e.Amount()), FormatCurrency(e.Rate), e.ID)

	if deduction.Deducted.IsPositive() {
		fmt.Fprintf(&b, "\n\n⚡ *Auto-Deduction Applied*\n%s\n"+
			"Deducted: %s\n"+
			"Remaining Balance: %s",
			divider, FormatCurrency(deduction.Deducted), FormatCurrency(deduction.NewBalance))
	}
	return b.String()
}

func orderCancelledText(e *domain.Entry) string {
	return fmt.Sprintf("🗑️ *Order Cancelled*\n\n"+
		"💎 Diamonds: %d💎\n"+
		"💰 Amount: %s\n"+
		"Order ID: %d",
		e.Diamonds, FormatCurrency(e.Amount()), e.ID)
}

func depositPendingText(displayName string, d *domain.DepositRequest) string {
	return fmt.Sprintf("⏳ *Deposit Pending Verification*\n\n"+
		"👤 User: %s\n"+
		"💰 Amount: %s\n\n"+
		"📸 Please take a screenshot of payment proof\n"+
		"and send it to admin for verification.\n\n"+
		"🔐 Deposit ID: %s",
		displayName, FormatCurrency(d.Amount), d.ID)
}

func depositApprovedAdminText(displayName string, result *usecase.DepositResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Deposit Approved*\n\n"+
		"👤 User: %s\n"+
		"💰 Amount: %s\n"+
		"✓ Status: Verified & Processed\n\n"+
		"%s\n💼 *Balance Updated*\n%s\n"+
		"Previous: %s\n"+
		"Deposited: %s\n"+
		"New Balance: %s",
		displayName, FormatCurrency(result.Deposit.Amount),
		divider, divider,
		FormatCurrency(result.BalanceBefore),
		FormatCurrency(result.Deposit.Amount),
		FormatCurrency(result.NewBalance))

	if result.AutoDeducted.IsPositive() {
		fmt.Fprintf(&b, "\n\n⚡ *Auto-Deduction Applied*\n%s\n"+
			"Due Amount: %s\n"+
			"Status: ✅ Automatically Deducted\n"+
			"Final Balance: %s",
			divider, FormatCurrency(result.AutoDeducted), FormatCurrency(result.NewBalance))
	}
	return b.String()
}

func depositApprovedUserText(result *usecase.DepositResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Deposit Approved*\n\n"+
		"Your deposit of %s has been verified!\n\n"+
		"💼 *Your New Balance*\n%s\n\n",
		FormatCurrency(result.Deposit.Amount), FormatCurrency(result.NewBalance))

	if result.AutoDeducted.IsPositive() {
		fmt.Fprintf(&b, "⚡ *Auto-Deduction Applied*\n%s\n"+
			"Your pending due of %s has been automatically paid!\n"+
			"Remaining Balance: %s\n\n",
			divider, FormatCurrency(result.AutoDeducted), FormatCurrency(result.NewBalance))
	}
	b.WriteString("📊 Check your dashboard: /d")
	return b.String()
}

func paymentProcessedAdminText(displayName string, amount decimal.Decimal, result *usecase.DepositResult) string {
	return fmt.Sprintf("✅ *Payment Processed*\n\n"+
		"User: %s\n"+
		"Amount Received: %s\n"+
		"Auto-Deducted for Due: %s\n"+
		"Remaining Balance: %s\n\n"+
		"Previous Balance: %s\n"+
		"New Balance: %s",
		displayName, FormatCurrency(amount),
		FormatCurrency(result.AutoDeducted), FormatCurrency(result.NewBalance),
		FormatCurrency(result.BalanceBefore), FormatCurrency(result.NewBalance))
}

func paymentProcessedUserText(amount decimal.Decimal, result *usecase.DepositResult) string {
	return fmt.Sprintf("✅ *Payment Received*\n\n"+
		"Amount: %s\n"+
		"Auto-Deducted for Dues: %s\n"+
		"Remaining Balance: %s\n\n"+
		"📊 Check your dashboard: /d",
		FormatCurrency(amount), FormatCurrency(result.AutoDeducted), FormatCurrency(result.NewBalance))
}

func balanceText(displayName string, balance decimal.Decimal) string {
	return fmt.Sprintf("*💰 YOUR BALANCE*\n\n"+
		"👤 Name: %s\n"+
		"💵 Current Balance: %s\n\n"+
		"%s\n💡 How balance works:\n%s\n"+
		"• Automatically pays your dues first\n"+
		"• Extra balance is kept for next purchases\n"+
		"• Check dashboard with /d\n\n"+
		"📝 To deposit:\nSend any amount (e.g., 500)",
		displayName, FormatCurrency(balance), divider, divider)
}

func pendingDepositsText(pending []*domain.DepositRequest) string {
	if len(pending) == 0 {
		return "✅ No pending deposits to verify!"
	}

	var b strings.Builder
	b.WriteString("*⏳ PENDING DEPOSITS VERIFICATION*\n\n" + divider + "\n")
	total := decimal.Zero
	for i, d := range pending {
		name := d.UserName
		if name == "" {
			name = d.UserID
		}
		fmt.Fprintf(&b, "%d. %s\n   Amount: %s\n\n", i+1, name, FormatCurrency(d.Amount))
		total = total.Add(d.Amount)
	}
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Total Pending: %d\nTotal Amount: %s\n\n", len(pending), FormatCurrency(total))
	b.WriteString("✅ Reply with \"amount//rcv\" to approve\n(e.g., 500//rcv to approve ৳500 deposit)")
	return b.String()
}

func pendingOrdersText(pending []*domain.Entry) string {
	if len(pending) == 0 {
		return "✅ No pending diamond orders!"
	}

	var b strings.Builder
	b.WriteString("*⏳ PENDING DIAMOND ORDERS*\n\n" + divider + "\n")
	for i, e := range pending {
		name := e.UserName
		if name == "" {
			name = e.UserID
		}
		fmt.Fprintf(&b, "%d. %s\n   %d💎 = %s\n   Order ID: %d\n\n", i+1, name, e.Diamonds, FormatCurrency(e.Amount()), e.ID)
	}
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Total Pending: %d\n\n", len(pending))
	b.WriteString("Reply \"done\" or \"ok\" to an order to approve it")
	return b.String()
}

func depositStatsText(stats domain.DepositStats) string {
	if stats.Completed == 0 && stats.Pending == 0 {
		return "📊 No deposits yet."
	}
	return fmt.Sprintf("*💰 DEPOSIT STATISTICS*\n\n%s\n"+
		"Total Deposited: %s\n"+
		"Verified Deposits: %d\n"+
		"Unique Users: %d\n"+
		"Pending: %d\n%s",
		divider, FormatCurrency(stats.TotalDeposited), stats.Completed, stats.UniqueUsers, stats.Pending, divider)
}

func systemOffText(notice string) string {
	if notice == "" {
		notice = domain.DefaultOffNotice
	}
	return "❌ *Diamond Requests Currently OFF*\n\n" + notice
}

func outOfStockText(requested, stock int64) string {
	return fmt.Sprintf("❌ *Not enough diamonds in stock*\n\n"+
		"You asked for: %d💎\n"+
		"In stock: %d💎\n\n"+
		"You can order at most %d💎.",
		requested, stock, stock)
}

const helpText = "*🤖 DIAMOND BOT COMMANDS*\n\n" +
	"/d - Show your dashboard\n" +
	"/balance - Check your balance\n" +
	"/pending - Show pending diamond requests\n" +
	"/cancel - Cancel your latest pending order\n" +
	"/help - Show this help message\n\n" +
	"*USER ACTIONS:*\n" +
	"Send any number in DM (e.g., 500) to request deposit\n" +
	"Send any number in group (e.g., 100) to order diamonds\n\n" +
	"*ADMIN ACTIONS:*\n" +
	"Reply with \"done\" or \"ok\" to approve an order\n" +
	"Reply with \"amount//rcv\" (e.g., 500//rcv) to approve deposit or process payment\n" +
	"/pendingdeposits - View pending deposit requests\n" +
	"/depstats - View deposit statistics\n" +
	"/addadmin phone_number name - Add new admin"
