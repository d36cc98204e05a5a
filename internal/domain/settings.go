package domain

import "time"

// Settings holds the diamond-system switches shared by the bot and the
// admin panel.
type Settings struct {
	StockEnabled bool      `json:"stockEnabled"`
	Stock        int64     `json:"stock"`
	OffNotice    string    `json:"offNotice,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DefaultOffNotice is sent when orders arrive while the system is off.
const DefaultOffNotice = "Diamond system is currently OFF. Please try again later."

// StockDepletedNotice replaces the off notice when the stock counter runs
// out and the system switches itself off.
const StockDepletedNotice = "Stock is finished. We will be back soon. Thank you!"
