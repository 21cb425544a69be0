package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"stakecast/internal/model"
	"stakecast/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

// Store provides Postgres persistence for sessions.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and runs pending migrations.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if err := migrate(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Create inserts a new subscribed session for the chat identity.
func (s *Store) Create(ctx context.Context, chatID, name string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (name, chat_id, subscribed)
		VALUES ($1, $2, true)
	`, name, chatID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

// Get returns the session for a chat identity.
func (s *Store) Get(ctx context.Context, chatID string) (model.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, chat_id, subscribed, created_at
		FROM sessions WHERE chat_id = $1
	`, chatID)

	var sess model.Session
	if err := row.Scan(&sess.ID, &sess.Name, &sess.ChatID, &sess.Subscribed, &sess.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, store.ErrNotFound
		}
		return model.Session{}, err
	}
	return sess, nil
}

// Update applies the provided fields. An empty patch is a no-op success.
func (s *Store) Update(ctx context.Context, chatID string, patch model.SessionPatch) error {
	if patch.Empty() {
		return nil
	}

	set := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if patch.Name != nil {
		args = append(args, *patch.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Subscribed != nil {
		args = append(args, *patch.Subscribed)
		set = append(set, fmt.Sprintf("subscribed = $%d", len(args)))
	}
	args = append(args, chatID)

	query := fmt.Sprintf(`UPDATE sessions SET %s WHERE chat_id = $%d`, strings.Join(set, ", "), len(args))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes the session for a chat identity.
func (s *Store) Delete(ctx context.Context, chatID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE chat_id = $1`, chatID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListAll returns every session, newest-first.
func (s *Store) ListAll(ctx context.Context) ([]model.Session, error) {
	return s.list(ctx, `
		SELECT id, name, chat_id, subscribed, created_at
		FROM sessions ORDER BY created_at DESC, id DESC
	`)
}

// ListActive returns subscribed sessions, newest-first.
func (s *Store) ListActive(ctx context.Context) ([]model.Session, error) {
	return s.list(ctx, `
		SELECT id, name, chat_id, subscribed, created_at
		FROM sessions WHERE subscribed ORDER BY created_at DESC, id DESC
	`)
}

func (s *Store) list(ctx context.Context, query string) ([]model.Session, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.ChatID, &sess.Subscribed, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
