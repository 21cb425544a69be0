package model

import "time"

// Session is a chat identity registered for fan-out notifications.
type Session struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	ChatID     string    `json:"chat_id"`
	Subscribed bool      `json:"subscribed"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionPatch carries the fields a session update may change.
// Nil fields are left untouched.
type SessionPatch struct {
	Name       *string
	Subscribed *bool
}

// Empty reports whether the patch changes nothing.
func (p SessionPatch) Empty() bool {
	return p.Name == nil && p.Subscribed == nil
}
