package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"modelcatalog/internal/models"
)

// CredentialRepository handles provider credential database operations
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

const credentialColumns = `id, provider, display_name, encrypted_api_key, enabled, created_at, updated_at`

// GetByProvider retrieves the credential stored for a provider
func (r *CredentialRepository) GetByProvider(ctx context.Context, provider string) (*models.ProviderCredential, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var cred models.ProviderCredential
	query := `SELECT ` + credentialColumns + ` FROM provider_credentials WHERE provider = $1`

	err := r.db.conn.GetContext(ctx, &cred, query, provider)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return &cred, nil
}

// List returns all stored credentials ordered by provider
func (r *CredentialRepository) List(ctx context.Context) ([]*models.ProviderCredential, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + credentialColumns + ` FROM provider_credentials ORDER BY provider`

	var creds []*models.ProviderCredential
	if err := r.db.conn.SelectContext(ctx, &creds, query); err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	return creds, nil
}

// Upsert inserts or replaces the credential for cred.Provider and fills in
// the stored id and timestamps
func (r *CredentialRepository) Upsert(ctx context.Context, cred *models.ProviderCredential) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO provider_credentials (id, provider, display_name, encrypted_api_key, enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    encrypted_api_key = EXCLUDED.encrypted_api_key,
		    enabled = EXCLUDED.enabled,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}

	err := r.db.conn.QueryRowxContext(
		ctx, query,
		cred.ID, cred.Provider, cred.DisplayName, cred.EncryptedAPIKey, cred.Enabled,
	).Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	return nil
}

// Delete removes the credential for a provider
func (r *CredentialRepository) Delete(ctx context.Context, provider string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM provider_credentials WHERE provider = $1`, provider)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrCredentialNotFound
	}

	return nil
}
