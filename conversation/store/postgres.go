package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/docpixie/docpixie/conversation"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/message"
)

// PostgresStore persists conversations in PostgreSQL with the message log
// stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

var _ conversation.Store = (*PostgresStore)(nil)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns default PostgreSQL configuration.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "docpixie",
		SSLMode:  "disable",
	}
}

// NewPostgresStore connects, verifies the connection, and creates the
// conversations table if it does not exist.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		id VARCHAR(255) PRIMARY KEY,
		title TEXT NOT NULL,
		messages JSONB NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Save writes or replaces a conversation record.
func (s *PostgresStore) Save(ctx context.Context, rec *conversation.Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("%w: conversation has no id", errors.ErrInvalidInput)
	}
	messagesJSON, err := json.Marshal(rec.Messages)
	if err != nil {
		return fmt.Errorf("encode messages for %s: %w", rec.ID, err)
	}

	query := `
	INSERT INTO conversations (id, title, messages, total_cost, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		messages = EXCLUDED.messages,
		total_cost = EXCLUDED.total_cost,
		updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Title, messagesJSON, rec.TotalCost, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save conversation %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns a conversation by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*conversation.Record, error) {
	query := `SELECT id, title, messages, total_cost, created_at, updated_at FROM conversations WHERE id = $1`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: conversation %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}
	return rec, nil
}

// List returns all conversations, most recently updated first.
func (s *PostgresStore) List(ctx context.Context) ([]*conversation.Record, error) {
	query := `SELECT id, title, messages, total_cost, created_at, updated_at FROM conversations ORDER BY updated_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []*conversation.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a conversation by id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: conversation %s", errors.ErrNotFound, id)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*conversation.Record, error) {
	var rec conversation.Record
	var messagesJSON []byte
	if err := row.Scan(&rec.ID, &rec.Title, &messagesJSON, &rec.TotalCost, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	var msgs []*message.Message
	if err := json.Unmarshal(messagesJSON, &msgs); err != nil {
		return nil, err
	}
	rec.Messages = msgs
	return &rec, nil
}
