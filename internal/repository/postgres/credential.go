package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.CredentialBackend = (*CredentialRepository)(nil)

// CredentialRepository persists the whole username to secret mapping in the
// credentials table.
type CredentialRepository struct {
	db *Connection
}

func NewCredentialRepository(db *Connection) *CredentialRepository {
	return &CredentialRepository{
		db: db,
	}
}

func (r *CredentialRepository) Load(ctx context.Context) (map[string]string, error) {
	query := `SELECT username, secret FROM credentials`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	credentials := make(map[string]string)
	for rows.Next() {
		var username, secret string
		if err := rows.Scan(&username, &secret); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		credentials[username] = secret
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	return credentials, nil
}

// Save replaces the table contents with credentials in a single transaction.
func (r *CredentialRepository) Save(ctx context.Context, credentials map[string]string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(credentials))
	for username, secret := range credentials {
		rows = append(rows, []any{username, secret, now})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"credentials"},
		[]string{"username", "secret", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}

	return nil
}
