package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelcatalog/internal/models"
)

type fakeCredentialStore struct {
	creds map[string]*models.ProviderCredential
	gets  int32
	err   error
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{creds: make(map[string]*models.ProviderCredential)}
}

func (f *fakeCredentialStore) GetByProvider(_ context.Context, provider string) (*models.ProviderCredential, error) {
	atomic.AddInt32(&f.gets, 1)
	if f.err != nil {
		return nil, f.err
	}
	cred, ok := f.creds[provider]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	copied := *cred
	return &copied, nil
}

func (f *fakeCredentialStore) List(context.Context) ([]*models.ProviderCredential, error) {
	out := make([]*models.ProviderCredential, 0, len(f.creds))
	for _, c := range f.creds {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCredentialStore) Upsert(_ context.Context, cred *models.ProviderCredential) error {
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	copied := *cred
	f.creds[cred.Provider] = &copied
	return nil
}

func (f *fakeCredentialStore) Delete(_ context.Context, provider string) error {
	if _, ok := f.creds[provider]; !ok {
		return ErrCredentialNotFound
	}
	delete(f.creds, provider)
	return nil
}

func TestCredentialResolver_SaveAndResolve(t *testing.T) {
	store := newFakeCredentialStore()
	r := NewCredentialResolver(store, testEncryption(t), 16, time.Minute)
	ctx := context.Background()

	cred, err := r.Save(ctx, " OpenAI ", "OpenAI", "sk-live-stored-key", true)
	require.NoError(t, err)
	assert.Equal(t, "openai", cred.Provider)
	assert.NotEqual(t, "sk-live-stored-key", store.creds["openai"].EncryptedAPIKey)

	key, err := r.Resolve(ctx, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-live-stored-key", key)

	_, err = r.Resolve(ctx, "OPENAI")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.gets), "second resolve is served from cache")
}

func TestCredentialResolver_Missing(t *testing.T) {
	store := newFakeCredentialStore()
	r := NewCredentialResolver(store, testEncryption(t), 16, time.Minute)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "deepseek")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
	_, err = r.Resolve(ctx, "deepseek")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.gets), "misses are cached too")

	_, err = r.Save(ctx, "deepseek", "", "ds-key", true)
	require.NoError(t, err)

	key, err := r.Resolve(ctx, "deepseek")
	require.NoError(t, err)
	assert.Equal(t, "ds-key", key, "save invalidates the cached miss")
}

func TestCredentialResolver_Disabled(t *testing.T) {
	store := newFakeCredentialStore()
	r := NewCredentialResolver(store, testEncryption(t), 16, time.Minute)

	_, err := r.Save(context.Background(), "openai", "", "sk-live-stored-key", false)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "openai")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestCredentialResolver_Remove(t *testing.T) {
	store := newFakeCredentialStore()
	r := NewCredentialResolver(store, testEncryption(t), 16, time.Minute)
	ctx := context.Background()

	_, err := r.Save(ctx, "openai", "", "sk-live-stored-key", true)
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "openai")
	require.NoError(t, err)

	require.NoError(t, r.Remove(ctx, "openai"))
	_, err = r.Resolve(ctx, "openai")
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	assert.ErrorIs(t, r.Remove(ctx, "openai"), ErrCredentialNotFound)
}

func TestCredentialResolver_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid input", func(t *testing.T) {
		r := NewCredentialResolver(newFakeCredentialStore(), testEncryption(t), 16, time.Minute)
		_, err := r.Save(ctx, "", "", "key", true)
		assert.ErrorIs(t, err, ErrInvalidCredential)
		_, err = r.Save(ctx, "openai", "", "  ", true)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("store failure is not cached", func(t *testing.T) {
		store := newFakeCredentialStore()
		store.err = errors.New("db down")
		r := NewCredentialResolver(store, testEncryption(t), 16, time.Minute)

		_, err := r.Resolve(ctx, "openai")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCredentialNotFound)

		_, _ = r.Resolve(ctx, "openai")
		assert.Equal(t, int32(2), atomic.LoadInt32(&store.gets))
	})

	t.Run("undecryptable", func(t *testing.T) {
		store := newFakeCredentialStore()
		store.creds["openai"] = &models.ProviderCredential{Provider: "openai", EncryptedAPIKey: "garbage", Enabled: true}
		r := NewCredentialResolver(store, testEncryption(t), 16, time.Minute)

		_, err := r.Resolve(ctx, "openai")
		assert.ErrorContains(t, err, "failed to decrypt credential")
	})
}
