package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okazarin/teller/internal/client/models"
	"github.com/okazarin/teller/internal/dbx"
)

// The durable layout is exactly two keys, written and cleared together,
// never independently.
const (
	keyCredential = "credential"
	keyIdentity   = "identity"
)

// SQLiteStore persists the session in the client's sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(ctx context.Context, sess models.Session) error {
	identity, err := json.Marshal(sess.Identity)
	if err != nil {
		return fmt.Errorf("%w: encoding identity: %v", ErrStorage, err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, keyCredential, []byte(sess.Credential)); err != nil {
			return err
		}
		return set(ctx, tx, keyIdentity, identity)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.Session, error) {
	credential, err := get(ctx, s.db, keyCredential)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, nil
	}

	raw, err := get(ctx, s.db, keyIdentity)
	if err != nil {
		return nil, err
	}

	var identity models.Identity
	if raw == nil || json.Unmarshal(raw, &identity) != nil {
		// Self-healing read: a credential without a parseable identity is
		// useless, so drop both rather than resurface the corruption.
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &models.Session{Credential: string(credential), Identity: identity}, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading session[%s]: %v", ErrStorage, key, err)
	}
	return value, nil
}
