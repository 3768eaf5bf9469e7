// Package postgres implements the conversation store on a managed
// chat_messages table. Schema migrations are embedded and applied on
// startup with goose.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/nihao-labs/yuban/internal/conversation"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a Postgres-backed conversation store.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn, applies pending migrations, and returns the store.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// migrate applies embedded migrations through goose, which works over
// database/sql, so the pool's config is bridged via the pgx stdlib driver.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Append inserts one turn.
func (s *Store) Append(ctx context.Context, turn conversation.Turn) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_messages (role, hanzi, pinyin, english, audio_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(turn.Role), turn.Hanzi, turn.Pinyin, turn.English, turn.AudioURL, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// ListAll returns every turn in ascending creation order.
func (s *Store) ListAll(ctx context.Context) ([]conversation.Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, hanzi, pinyin, english, audio_url, created_at
		 FROM chat_messages ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	turns := []conversation.Turn{}
	for rows.Next() {
		var (
			turn conversation.Turn
			role string
		)
		if err := rows.Scan(&role, &turn.Hanzi, &turn.Pinyin, &turn.English, &turn.AudioURL, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turn.Role = conversation.Role(role)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return turns, nil
}

// Clear deletes every turn.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("clearing turns: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
