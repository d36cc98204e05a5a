package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a diamond order entry.
type EntryStatus string

const (
	// EntryPending is the initial state of a submitted order.
	EntryPending EntryStatus = "pending"

	// EntryApproved means an admin accepted the order. Only approved
	// entries count toward a user's due. Terminal.
	EntryApproved EntryStatus = "approved"

	// EntryDeleted marks an order whose source message was revoked.
	// The row is kept for audit. Terminal.
	EntryDeleted EntryStatus = "deleted"
)

// Entry is one diamond order inside a group. Rate is a snapshot taken at
// creation time; later group rate changes do not touch existing entries.
type Entry struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"userId"`
	UserName   string          `json:"userName,omitempty"`
	PlayerRef  string          `json:"playerRef,omitempty"`
	Diamonds   int64           `json:"diamonds"`
	Rate       decimal.Decimal `json:"rate"`
	Status     EntryStatus     `json:"status"`
	MessageID  string          `json:"messageId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty"`
	DeletedAt  *time.Time      `json:"deletedAt,omitempty"`
}

// Amount is what this entry owes: diamonds * rate, fixed at creation.
func (e *Entry) Amount() decimal.Decimal {
	return e.Rate.Mul(decimal.NewFromInt(e.Diamonds))
}

// Terminal reports whether the entry can no longer change status.
func (e *Entry) Terminal() bool {
	return e.Status == EntryApproved || e.Status == EntryDeleted
}

// Group holds a chat group's rate and its order entries. DueLimit is an
// informational ceiling surfaced to the admin panel, not enforced here.
type Group struct {
	ID        string           `json:"groupId"`
	Name      string           `json:"groupName,omitempty"`
	Rate      decimal.Decimal  `json:"rate"`
	DueLimit  *decimal.Decimal `json:"dueLimit,omitempty"`
	Entries   []*Entry         `json:"entries"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// FindEntry returns the entry with the given id, or nil.
func (g *Group) FindEntry(entryID int64) *Entry {
	for _, e := range g.Entries {
		if e.ID == entryID {
			return e
		}
	}
	return nil
}

// ApprovedDue sums diamonds*rate over the user's approved entries.
func (g *Group) ApprovedDue(userID string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range g.Entries {
		if e.UserID == userID && e.Status == EntryApproved {
			sum = sum.Add(e.Amount())
		}
	}
	return sum
}
