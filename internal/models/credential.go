package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderCredential is an operator-stored API key for one provider.
// EncryptedAPIKey holds AES-GCM ciphertext and is never serialized.
type ProviderCredential struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Provider        string    `db:"provider" json:"provider"`
	DisplayName     string    `db:"display_name" json:"display_name"`
	EncryptedAPIKey string    `db:"encrypted_api_key" json:"-"`
	Enabled         bool      `db:"enabled" json:"enabled"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
