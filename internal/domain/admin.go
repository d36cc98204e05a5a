package domain

import "time"

// Admin is a chat-side operator allowed to approve orders and deposits.
type Admin struct {
	ChatID  string    `json:"chatId"`
	Phone   string    `json:"phone,omitempty"`
	Name    string    `json:"name,omitempty"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"addedAt"`
}

// RoleAdmin is the only role the chat side distinguishes today.
const RoleAdmin = "admin"

// DefaultPIN protects the admin panel until an operator changes it.
const DefaultPIN = "1234"
