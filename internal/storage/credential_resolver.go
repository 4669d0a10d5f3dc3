package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"modelcatalog/internal/models"
)

// CredentialStore is the persistence the resolver needs.
type CredentialStore interface {
	GetByProvider(ctx context.Context, provider string) (*models.ProviderCredential, error)
	List(ctx context.Context) ([]*models.ProviderCredential, error)
	Upsert(ctx context.Context, cred *models.ProviderCredential) error
	Delete(ctx context.Context, provider string) error
}

// resolved caches both hits and misses so lookups for providers without a
// stored key do not reach the database on every request.
type resolved struct {
	apiKey string
	found  bool
}

// CredentialResolver decrypts stored keys and caches the results.
type CredentialResolver struct {
	store CredentialStore
	enc   *Encryption
	cache *LRUCache[resolved]
}

// NewCredentialResolver creates a resolver with an LRU cache of the given size and TTL.
func NewCredentialResolver(store CredentialStore, enc *Encryption, cacheSize int, cacheTTL time.Duration) *CredentialResolver {
	return &CredentialResolver{
		store: store,
		enc:   enc,
		cache: NewLRUCache[resolved](cacheSize, cacheTTL),
	}
}

// Resolve returns the plaintext key for provider. Missing and disabled
// credentials both yield ErrCredentialNotFound.
func (r *CredentialResolver) Resolve(ctx context.Context, provider string) (string, error) {
	provider = normalizeProvider(provider)

	if hit, ok := r.cache.Get(provider); ok {
		if !hit.found {
			return "", ErrCredentialNotFound
		}
		return hit.apiKey, nil
	}

	cred, err := r.store.GetByProvider(ctx, provider)
	if errors.Is(err, ErrCredentialNotFound) || (err == nil && !cred.Enabled) {
		r.cache.Set(provider, resolved{})
		return "", ErrCredentialNotFound
	}
	if err != nil {
		return "", err
	}

	apiKey, err := r.enc.DecryptString(cred.EncryptedAPIKey)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential for %s: %w", provider, err)
	}

	r.cache.Set(provider, resolved{apiKey: apiKey, found: true})
	return apiKey, nil
}

// Save encrypts and stores apiKey for provider.
func (r *CredentialResolver) Save(ctx context.Context, provider, displayName, apiKey string, enabled bool) (*models.ProviderCredential, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		return nil, fmt.Errorf("%w: provider is required", ErrInvalidCredential)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: api_key is required", ErrInvalidCredential)
	}

	encrypted, err := r.enc.EncryptString(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt credential: %w", err)
	}

	cred := &models.ProviderCredential{
		Provider:        provider,
		DisplayName:     displayName,
		EncryptedAPIKey: encrypted,
		Enabled:         enabled,
	}
	if err := r.store.Upsert(ctx, cred); err != nil {
		return nil, err
	}

	r.Invalidate(provider)
	return cred, nil
}

// Get returns the stored record without decrypting it.
func (r *CredentialResolver) Get(ctx context.Context, provider string) (*models.ProviderCredential, error) {
	return r.store.GetByProvider(ctx, normalizeProvider(provider))
}

// List returns all stored records without decrypting them.
func (r *CredentialResolver) List(ctx context.Context) ([]*models.ProviderCredential, error) {
	return r.store.List(ctx)
}

// Remove deletes the stored key for provider.
func (r *CredentialResolver) Remove(ctx context.Context, provider string) error {
	provider = normalizeProvider(provider)
	defer r.Invalidate(provider)
	return r.store.Delete(ctx, provider)
}

// Invalidate drops any cached result for provider.
func (r *CredentialResolver) Invalidate(provider string) {
	r.cache.Delete(normalizeProvider(provider))
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
