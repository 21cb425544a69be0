package store

import (
	"context"
	"errors"

	"stakecast/internal/model"
)

var (
	// ErrNotFound is returned when no session exists for a chat identity.
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned when a chat identity is already registered.
	ErrConflict = errors.New("chat id already registered")
)

// SessionStore is the durable registry of notification subscribers.
type SessionStore interface {
	Create(ctx context.Context, chatID, name string) error
	Get(ctx context.Context, chatID string) (model.Session, error)
	Update(ctx context.Context, chatID string, patch model.SessionPatch) error
	Delete(ctx context.Context, chatID string) error
	ListAll(ctx context.Context) ([]model.Session, error)
	ListActive(ctx context.Context) ([]model.Session, error)
}
