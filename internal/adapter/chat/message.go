package chat

// Message is one inbound chat event as delivered by the external messaging
// bridge. The transport (WhatsApp client, test harness) resolves display
// names, group membership, quoted messages, and admin status before handing
// the event over.
type Message struct {
	UserID       string `json:"userId"`
	UserName     string `json:"userName,omitempty"`
	GroupID      string `json:"groupId,omitempty"`
	GroupName    string `json:"groupName,omitempty"`
	Text         string `json:"text"`
	MessageID    string `json:"messageId,omitempty"`
	QuotedUserID string `json:"quotedUserId,omitempty"`
	IsAdmin      bool   `json:"isAdmin"`

	// Revoked marks a "delete for everyone" event instead of new text.
	Revoked bool `json:"revoked,omitempty"`
}

// InGroup reports whether the message came from a group chat.
func (m Message) InGroup() bool { return m.GroupID != "" }

// Reply is one outbound message. An empty ChatID answers in the chat the
// inbound message came from; otherwise it is a direct message to ChatID.
type Reply struct {
	ChatID string `json:"chatId,omitempty"`
	Text   string `json:"text"`
}

func replyTo(chatID, text string) Reply { return Reply{ChatID: chatID, Text: text} }

func reply(text string) Reply { return Reply{Text: text} }
