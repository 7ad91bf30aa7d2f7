package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DisparoLabs/disparo/internal/outreach_service/domain"
)

// The durable state is three keyed text blobs, matching the original
// key-value storage layout: the serialized collection, the global message
// template and the follow-up delay in seconds as text.
const (
	stateKeyContacts = "contacts"
	stateKeyTemplate = "message_template"
	stateKeyDelay    = "follow_up_delay_seconds"
)

// PgxIface is the subset of pgxpool.Pool the repository needs; pgxmock
// implements it for tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStateRepository persists application state into a single key-value table.
type PgStateRepository struct {
	db     PgxIface
	logger *slog.Logger
}

// NewPgStateRepository creates a PgStateRepository.
func NewPgStateRepository(db PgxIface, logger *slog.Logger) *PgStateRepository {
	return &PgStateRepository{db: db, logger: logger}
}

// EnsureSchema creates the state table when it does not exist yet.
func (r *PgStateRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS app_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("creating app_state table: %w", err)
	}
	return nil
}

// LoadContacts reads the serialized collection. A missing key means a fresh
// install and yields an empty collection, not an error.
func (r *PgStateRepository) LoadContacts(ctx context.Context) ([]*domain.Contact, error) {
	value, ok, err := r.getValue(ctx, stateKeyContacts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var contacts []*domain.Contact
	if err := json.Unmarshal([]byte(value), &contacts); err != nil {
		r.logger.ErrorContext(ctx, "Error unmarshaling persisted contacts", "error", err)
		return nil, fmt.Errorf("unmarshaling persisted contacts: %w", err)
	}
	return contacts, nil
}

// SaveContacts rewrites the serialized collection.
func (r *PgStateRepository) SaveContacts(ctx context.Context, contacts []*domain.Contact) error {
	data, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("marshaling contacts: %w", err)
	}
	return r.setValue(ctx, stateKeyContacts, string(data))
}

// LoadSettings reads the two settings keys. When neither was ever written it
// returns nil so the caller keeps its configured defaults.
func (r *PgStateRepository) LoadSettings(ctx context.Context) (*domain.Settings, error) {
	template, hasTemplate, err := r.getValue(ctx, stateKeyTemplate)
	if err != nil {
		return nil, err
	}
	delayText, hasDelay, err := r.getValue(ctx, stateKeyDelay)
	if err != nil {
		return nil, err
	}
	if !hasTemplate && !hasDelay {
		return nil, nil
	}

	s := &domain.Settings{MessageTemplate: template}
	if hasDelay {
		delay, err := strconv.Atoi(delayText)
		if err != nil {
			r.logger.WarnContext(ctx, "Persisted follow-up delay is not an integer, ignoring", "value", delayText)
		} else {
			s.FollowUpDelaySeconds = delay
		}
	}
	return s, nil
}

// SaveSettings rewrites both settings keys.
func (r *PgStateRepository) SaveSettings(ctx context.Context, s *domain.Settings) error {
	if err := r.setValue(ctx, stateKeyTemplate, s.MessageTemplate); err != nil {
		return err
	}
	return r.setValue(ctx, stateKeyDelay, strconv.Itoa(s.FollowUpDelaySeconds))
}

func (r *PgStateRepository) getValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM app_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		r.logger.ErrorContext(ctx, "Error reading state key", "key", key, "error", err)
		return "", false, fmt.Errorf("reading state key %q: %w", key, err)
	}
	return value, true, nil
}

func (r *PgStateRepository) setValue(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := r.db.Exec(ctx, query, key, value); err != nil {
		r.logger.ErrorContext(ctx, "Error writing state key", "key", key, "error", err)
		return fmt.Errorf("writing state key %q: %w", key, err)
	}
	return nil
}
