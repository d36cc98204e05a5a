package usecase

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

// StatsUseCase aggregates read-only figures for the admin panel.
type StatsUseCase struct {
	accounts AccountRepository
	txns     TransactionRepository
	groups   GroupRepository
	log      zerolog.Logger
}

// NewStatsUseCase creates a new StatsUseCase.
func NewStatsUseCase(accounts AccountRepository, txns TransactionRepository, groups GroupRepository, log zerolog.Logger) *StatsUseCase {
	return &StatsUseCase{
		accounts: accounts,
		txns:     txns,
		groups:   groups,
		log:      log,
	}
}

// Overview is the panel's top-line summary.
type Overview struct {
	Groups         int             `json:"groups"`
	Users          int             `json:"users"`
	OrdersPending  int             `json:"ordersPending"`
	OrdersApproved int             `json:"ordersApproved"`
	OrdersDeleted  int             `json:"ordersDeleted"`
	TotalDue       decimal.Decimal `json:"totalDue"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	BalanceHeld    decimal.Decimal `json:"balanceHeld"`
}

// GroupAnalytics is one group's order and due breakdown.
type GroupAnalytics struct {
	GroupID        string          `json:"groupId"`
	GroupName      string          `json:"groupName,omitempty"`
	Rate           decimal.Decimal `json:"rate"`
	OrdersPending  int             `json:"ordersPending"`
	OrdersApproved int             `json:"ordersApproved"`
	ApprovedDue    decimal.Decimal `json:"approvedDue"`
	Users          int             `json:"users"`
}

// Overview walks the stores once and totals what the panel dashboard shows.
// TotalDue is the gross due of approved entries, before auto-deductions;
// TotalPaid is the sum of auto records against it.
func (uc *StatsUseCase) Overview() (Overview, error) {
	ov := Overview{
		TotalDue:    decimal.Zero,
		TotalPaid:   decimal.Zero,
		BalanceHeld: decimal.Zero,
	}

	groups, err := uc.groups.List()
	if err != nil {
		return ov, err
	}
	ov.Groups = len(groups)
	for _, g := range groups {
		for _, e := range g.Entries {
			switch e.Status {
			case domain.EntryPending:
				ov.OrdersPending++
			case domain.EntryApproved:
				ov.OrdersApproved++
				ov.TotalDue = ov.TotalDue.Add(e.Amount())
			case domain.EntryDeleted:
				ov.OrdersDeleted++
			}
		}
	}

	accounts, err := uc.accounts.List()
	if err != nil {
		return ov, err
	}
	ov.Users = len(accounts)
	for _, a := range accounts {
		ov.BalanceHeld = ov.BalanceHeld.Add(a.Balance)
	}

	autos, err := uc.txns.List(domain.TransactionFilter{Type: domain.TransactionAuto})
	if err != nil {
		return ov, err
	}
	for _, t := range autos {
		ov.TotalPaid = ov.TotalPaid.Add(t.Amount)
	}

	return ov, nil
}

// Analytics breaks orders and dues down per group.
func (uc *StatsUseCase) Analytics() ([]GroupAnalytics, error) {
	groups, err := uc.groups.List()
	if err != nil {
		return nil, err
	}

	out := make([]GroupAnalytics, 0, len(groups))
	for _, g := range groups {
		ga := GroupAnalytics{
			GroupID:     g.ID,
			GroupName:   g.Name,
			Rate:        g.Rate,
			ApprovedDue: decimal.Zero,
		}
		users := make(map[string]struct{})
		for _, e := range g.Entries {
			users[e.UserID] = struct{}{}
			switch e.Status {
			case domain.EntryPending:
				ga.OrdersPending++
			case domain.EntryApproved:
				ga.OrdersApproved++
				ga.ApprovedDue = ga.ApprovedDue.Add(e.Amount())
			}
		}
		ga.Users = len(users)
		out = append(out, ga)
	}
	return out, nil
}
