package telegram

import "strings"

// Update represents an incoming Telegram update (abstraction from tgbotapi)
type Update struct {
	UpdateID int `json:"update_id"`

	// Message is present if this is a regular message
	Message *Message `json:"message,omitempty"`

	// CallbackQuery is present if this is a callback from inline keyboard
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message represents a Telegram message
type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      *Chat  `json:"chat"`
	Text      string `json:"text,omitempty"`
	IsCommand bool   `json:"-"` // Computed field, not from JSON
	Command   string `json:"-"` // Parsed command (without /)
	Arguments string `json:"-"` // Command arguments
}

// CallbackQuery represents a callback query from inline keyboard button
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"` // Callback data
}

// User represents a Telegram user
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	IsBot     bool   `json:"is_bot,omitempty"`
}

// Chat represents a Telegram chat
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"` // "private", "group", "supergroup", "channel"
	Username string `json:"username,omitempty"`
}

// HasMessage checks if update contains a message
func (u *Update) HasMessage() bool {
	return u.Message != nil
}

// HasCallback checks if update contains a callback query
func (u *Update) HasCallback() bool {
	return u.CallbackQuery != nil
}

// ParseCommand parses command from message text
// Call this after JSON unmarshaling to populate IsCommand, Command, Arguments
func (m *Message) ParseCommand() {
	if m == nil || m.Text == "" {
		return
	}

	if m.Text[0] != '/' {
		m.IsCommand = false
		return
	}

	m.IsCommand = true

	// Format: /command args or /command@botname args
	parts := strings.Fields(m.Text[1:])
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	if at := strings.IndexByte(command, '@'); at != -1 {
		command = command[:at]
	}
	m.Command = command

	if len(parts) > 1 {
		m.Arguments = strings.Join(parts[1:], " ")
	}
}
