package chat

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/infrastructure/metrics"
	"github.com/arefin/diamondledger/internal/usecase"
)

var (
	numberPattern   = regexp.MustCompile(`^\d+$`)
	receivePattern  = regexp.MustCompile(`(?i)^(\d+(?:\.\d{1,2})?)//rcv$`)
	addAdminPattern = regexp.MustCompile(`^/addadmin\s+(\d+)\s+(.+)$`)
)

// approvalKeywords are the short replies admins use to approve a quoted
// diamond order.
var approvalKeywords = map[string]struct{}{
	"done": {}, "ok": {}, "do": {}, "dn": {}, "yes": {}, "okey": {},
}

// Router turns inbound chat events into ledger operations and composes the
// replies. It owns no transport: the bridge feeds it messages and delivers
// whatever replies come back.
type Router struct {
	ledger   *usecase.LedgerUseCase
	orders   *usecase.OrderUseCase
	deposits *usecase.DepositUseCase
	settings *usecase.SettingsUseCase
	admin    *usecase.AdminUseCase
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewRouter creates a new Router. metrics may be nil.
func NewRouter(
	ledger *usecase.LedgerUseCase,
	orders *usecase.OrderUseCase,
	deposits *usecase.DepositUseCase,
	settings *usecase.SettingsUseCase,
	admin *usecase.AdminUseCase,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Router {
	return &Router{
		ledger:   ledger,
		orders:   orders,
		deposits: deposits,
		settings: settings,
		admin:    admin,
		metrics:  m,
		log:      log,
	}
}

// Handle processes one inbound message and returns the replies to deliver.
// An empty slice means stay silent. Failures never escape as errors: users
// get a short failure text, operators get a log line.
func (r *Router) Handle(ctx context.Context, msg Message) []Reply {
	if msg.Revoked {
		return r.handleRevoked(msg)
	}

	text := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(text)

	switch lower {
	case "/d":
		return r.handleDashboard(msg)
	case "/balance":
		return r.handleBalance(msg)
	case "/help":
		return []Reply{reply(helpText)}
	case "/cancel":
		return r.handleCancel(ctx, msg)
	case "/pending":
		return r.handlePendingOrders(msg)
	case "/pendingdeposits":
		return r.handlePendingDeposits(msg)
	case "/depstats":
		return r.handleDepositStats(msg)
	}

	if m := addAdminPattern.FindStringSubmatch(text); m != nil {
		return r.handleAddAdmin(msg, m[1], strings.TrimSpace(m[2]))
	}

	if _, ok := approvalKeywords[lower]; ok && msg.InGroup() {
		return r.handleOrderApproval(ctx, msg)
	}

	if m := receivePattern.FindStringSubmatch(text); m != nil && msg.InGroup() {
		return r.handleReceive(ctx, msg, m[1])
	}

	if numberPattern.MatchString(text) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil
		}
		if msg.InGroup() {
			return r.handleOrder(ctx, msg, "", n)
		}
		return r.handleDepositRequest(msg, n)
	}

	// Multi-line order: first line is the player id, second the diamond
	// count. No confirmation is sent; the order waits silently for an admin.
	if msg.InGroup() && strings.Contains(text, "\n") {
		return r.handleMultiLineOrder(ctx, msg, text)
	}

	return nil
}

func (r *Router) handleRevoked(msg Message) []Reply {
	if !msg.InGroup() || msg.MessageID == "" {
		return nil
	}
	entry, err := r.orders.RevokeByMessage(msg.GroupID, msg.MessageID)
	if err != nil {
		if !errors.Is(err, domain.ErrEntryNotFound) {
			r.log.Error().Err(err).Str("message_id", msg.MessageID).Msg("revoke failed")
		}
		return nil
	}
	if r.metrics != nil {
		r.metrics.OrdersDeleted.Inc()
	}
	r.log.Info().Int64("entry_id", entry.ID).Str("group_id", msg.GroupID).Msg("order revoked by message deletion")
	return nil
}

func (r *Router) handleDashboard(msg Message) []Reply {
	snap, err := r.ledger.Snapshot(msg.UserID, msg.GroupID)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", msg.UserID).Msg("dashboard failed")
		return []Reply{reply("❌ Error loading dashboard. Please try again.")}
	}
	return []Reply{reply(dashboardText(displayName(msg), snap))}
}

func (r *Router) handleBalance(msg Message) []Reply {
	balance, err := r.ledger.Balance(msg.UserID)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", msg.UserID).Msg("balance lookup failed")
		return []Reply{reply("❌ Error loading balance.")}
	}
	return []Reply{reply(balanceText(displayName(msg), balance))}
}

func (r *Router) handleCancel(ctx context.Context, msg Message) []Reply {
	if !msg.InGroup() {
		return []Reply{reply("❌ Cancel command only works in groups.")}
	}
	entry, err := r.orders.CancelLatestPending(msg.GroupID, msg.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return []Reply{reply("❌ No pending order to cancel.")}
		}
		r.log.Error().Err(err).Str("user_id", msg.UserID).Msg("cancel failed")
		return []Reply{reply("❌ Error cancelling order. Please try again.")}
	}
	if r.metrics != nil {
		r.metrics.OrdersDeleted.Inc()
	}
	return []Reply{reply(orderCancelledText(entry))}
}

func (r *Router) handlePendingOrders(msg Message) []Reply {
	if !msg.InGroup() {
		return []Reply{reply("❌ This command works only in groups.")}
	}
	pending, err := r.orders.PendingOrders(msg.GroupID)
	if err != nil {
		r.log.Error().Err(err).Str("group_id", msg.GroupID).Msg("pending orders failed")
		return []Reply{reply("❌ Error loading pending orders.")}
	}
	return []Reply{reply(pendingOrdersText(pending))}
}

func (r *Router) handlePendingDeposits(msg Message) []Reply {
	if !msg.IsAdmin {
		return []Reply{reply("❌ Only admins can view pending deposits.")}
	}
	return []Reply{reply(pendingDepositsText(r.deposits.Pending()))}
}

func (r *Router) handleDepositStats(msg Message) []Reply {
	if !msg.IsAdmin {
		return []Reply{reply("❌ Only admins can view deposit statistics.")}
	}
	return []Reply{reply(depositStatsText(r.deposits.Stats()))}
}

func (r *Router) handleAddAdmin(msg Message, phone, name string) []Reply {
	if !msg.IsAdmin {
		return []Reply{reply("❌ Only admins can add new admins.")}
	}
	chatID := phone + "@c.us"
	added, err := r.admin.AddAdmin(chatID, phone, name)
	if err != nil {
		r.log.Error().Err(err).Str("phone", phone).Msg("add admin failed")
		return []Reply{reply("❌ Error adding admin. Please try again.")}
	}
	if !added {
		return []Reply{reply("❌ This number is already an admin.")}
	}
	return []Reply{reply("✅ *Admin Added*\n\nPhone: +" + phone + "\nName: " + name + "\nStatus: Active")}
}

// handleOrder places a single-number diamond order in a group.
func (r *Router) handleOrder(ctx context.Context, msg Message, playerRef string, diamonds int64) []Reply {
	entry, err := r.orders.PlaceOrder(ctx, usecase.PlaceOrderInput{
		GroupID:   msg.GroupID,
		GroupName: msg.GroupName,
		UserID:    msg.UserID,
		UserName:  displayName(msg),
		PlayerRef: playerRef,
		Diamonds:  diamonds,
		MessageID: msg.MessageID,
	})
	if err != nil {
		return []Reply{reply(r.orderErrorText(err, diamonds))}
	}
	if r.metrics != nil {
		r.metrics.OrdersPlaced.Inc()
	}
	if playerRef != "" {
		// Multi-line orders stay silent until approval.
		return nil
	}
	return []Reply{reply(orderReceivedText(displayName(msg), entry))}
}

func (r *Router) handleMultiLineOrder(ctx context.Context, msg Message, text string) []Reply {
	lines := make([]string, 0, 2)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil
	}
	diamonds, err := strconv.ParseInt(lines[1], 10, 64)
	if err != nil {
		return []Reply{reply("❌ Invalid diamond amount. Format: ID\nDiamonds")}
	}
	return r.handleOrder(ctx, msg, lines[0], diamonds)
}

func (r *Router) orderErrorText(err error, diamonds int64) string {
	switch {
	case errors.Is(err, domain.ErrStockDisabled):
		notice := ""
		if s, sErr := r.settings.Status(); sErr == nil {
			notice = s.OffNotice
		}
		return systemOffText(notice)
	case errors.Is(err, domain.ErrOutOfStock):
		stock := int64(0)
		if s, sErr := r.settings.Status(); sErr == nil {
			stock = s.Stock
		}
		return outOfStockText(diamonds, stock)
	case errors.Is(err, domain.ErrInvalidDiamonds):
		return "❌ Invalid diamond amount. Send a positive number up to 10,000."
	case errors.Is(err, domain.ErrUserBlocked):
		return "❌ You are blocked from placing orders. Contact admin."
	default:
		r.log.Error().Err(err).Msg("order placement failed")
		return "❌ Error processing your request. Please try again."
	}
}

// handleOrderApproval approves the quoted user's oldest pending order.
func (r *Router) handleOrderApproval(ctx context.Context, msg Message) []Reply {
	if !msg.IsAdmin {
		return []Reply{reply("❌ Only admins can approve orders.")}
	}
	if msg.QuotedUserID == "" {
		return []Reply{reply("❌ Please reply to a user order to approve it.")}
	}

	pending, err := r.orders.PendingOrders(msg.GroupID)
	if err != nil {
		r.log.Error().Err(err).Str("group_id", msg.GroupID).Msg("approval lookup failed")
		return []Reply{reply("❌ Error approving order. Please try again.")}
	}
	var target *domain.Entry
	for _, e := range pending {
		if e.UserID == msg.QuotedUserID {
			target = e
			break
		}
	}
	if target == nil {
		return []Reply{reply("❌ No pending diamond order found for this user.")}
	}

	entry, deduction, err := r.orders.ApproveOrder(ctx, msg.GroupID, target.ID)
	if err != nil {
		r.log.Error().Err(err).Int64("entry_id", target.ID).Msg("order approval failed")
		return []Reply{reply("❌ Error approving order. Please try again.")}
	}
	if r.metrics != nil {
		r.metrics.OrdersApproved.Inc()
		if deduction.Deducted.IsPositive() {
			r.metrics.AutoDeductions.Inc()
			amt, _ := deduction.Deducted.Float64()
			r.metrics.DeductedAmount.Add(amt)
		}
	}

	name := entry.UserName
	if name == "" {
		name = entry.UserID
	}
	return []Reply{reply(orderApprovedText(name, entry, deduction))}
}

func (r *Router) handleDepositRequest(msg Message, amount int64) []Reply {
	d, err := r.deposits.Request(msg.UserID, displayName(msg), msg.GroupID, decimal.NewFromInt(amount))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAmountTooLarge):
			return []Reply{reply("❌ Amount too large. Maximum deposit is ৳100,000.")}
		case errors.Is(err, domain.ErrInvalidAmount):
			return []Reply{reply("❌ Invalid amount. Please send a positive number.")}
		case errors.Is(err, domain.ErrUserBlocked):
			return []Reply{reply("❌ You are blocked from making deposits. Contact admin.")}
		default:
			r.log.Error().Err(err).Str("user_id", msg.UserID).Msg("deposit request failed")
			return []Reply{reply("❌ Error processing deposit request. Please try again.")}
		}
	}
	if r.metrics != nil {
		r.metrics.DepositsRequested.Inc()
	}
	return []Reply{reply(depositPendingText(displayName(msg), d))}
}

// handleReceive settles money an admin acknowledges with "amount//rcv" in
// reply to a user. A matching pending deposit is approved; otherwise the
// amount is processed as a direct payment toward the user's dues.
func (r *Router) handleReceive(ctx context.Context, msg Message, rawAmount string) []Reply {
	if !msg.IsAdmin {
		return []Reply{reply("❌ Only admins can process payments/deposits.")}
	}
	if msg.QuotedUserID == "" {
		return []Reply{reply("❌ Please reply to a user message to process payment/deposit.")}
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return []Reply{reply("❌ Invalid amount.")}
	}

	result, err := r.deposits.ApproveMatching(ctx, msg.QuotedUserID, amount)
	if err == nil {
		if r.metrics != nil {
			r.metrics.DepositsApproved.Inc()
			if result.AutoDeducted.IsPositive() {
				r.metrics.AutoDeductions.Inc()
				amt, _ := result.AutoDeducted.Float64()
				r.metrics.DeductedAmount.Add(amt)
			}
		}
		name := result.Deposit.UserName
		if name == "" {
			name = result.Deposit.UserID
		}
		return []Reply{
			reply(depositApprovedAdminText(name, result)),
			replyTo(msg.QuotedUserID, depositApprovedUserText(result)),
		}
	}
	if !errors.Is(err, domain.ErrDepositNotFound) {
		r.log.Error().Err(err).Str("user_id", msg.QuotedUserID).Msg("deposit approval failed")
		return []Reply{reply("❌ Error processing deposit. Please try again.")}
	}

	// No pending deposit for that amount: treat as a direct payment.
	payment, err := r.deposits.ProcessPayment(ctx, msg.QuotedUserID, "", msg.GroupID, amount)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", msg.QuotedUserID).Msg("payment processing failed")
		return []Reply{reply("❌ Error processing payment")}
	}
	if r.metrics != nil && payment.AutoDeducted.IsPositive() {
		r.metrics.AutoDeductions.Inc()
		amt, _ := payment.AutoDeducted.Float64()
		r.metrics.DeductedAmount.Add(amt)
	}
	return []Reply{
		reply(paymentProcessedAdminText(msg.QuotedUserID, amount, payment)),
		replyTo(msg.QuotedUserID, paymentProcessedUserText(amount, payment)),
	}
}

func displayName(msg Message) string {
	if msg.UserName != "" {
		return msg.UserName
	}
	return msg.UserID
}
