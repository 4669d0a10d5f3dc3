package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelcatalog/internal/models"
)

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewDBFromConn(sqlx.NewDb(conn, "sqlmock"), time.Second), mock
}

var credentialRow = []string{"id", "provider", "display_name", "encrypted_api_key", "enabled", "created_at", "updated_at"}

func TestCredentialRepository_GetByProvider(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := db.NewCredentialRepository()

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM provider_credentials WHERE provider = $1")).
		WithArgs("openai").
		WillReturnRows(sqlmock.NewRows(credentialRow).AddRow(id.String(), "openai", "OpenAI", "cipher", true, now, now))

	cred, err := repo.GetByProvider(context.Background(), "openai")
	require.NoError(t, err)
	assert.Equal(t, id, cred.ID)
	assert.Equal(t, "cipher", cred.EncryptedAPIKey)
	assert.True(t, cred.Enabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_GetByProviderNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := db.NewCredentialRepository()

	mock.ExpectQuery(regexp.QuoteMeta("FROM provider_credentials WHERE provider = $1")).
		WithArgs("deepseek").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByProvider(context.Background(), "deepseek")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestCredentialRepository_GetByProviderFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := db.NewCredentialRepository()

	mock.ExpectQuery(regexp.QuoteMeta("FROM provider_credentials")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByProvider(context.Background(), "openai")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialNotFound)
	assert.Contains(t, err.Error(), "failed to get credential")
}

func TestCredentialRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := db.NewCredentialRepository()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM provider_credentials ORDER BY provider")).
		WillReturnRows(sqlmock.NewRows(credentialRow).
			AddRow(uuid.NewString(), "deepseek", "", "c1", true, now, now).
			AddRow(uuid.NewString(), "openai", "OpenAI", "c2", false, now, now))

	creds, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "deepseek", creds[0].Provider)
	assert.False(t, creds[1].Enabled)
}

func TestCredentialRepository_Upsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := db.NewCredentialRepository()

	storedID := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (provider) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), "openai", "OpenAI", "cipher", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(storedID.String(), now, now))

	cred := &models.ProviderCredential{Provider: "openai", DisplayName: "OpenAI", EncryptedAPIKey: "cipher", Enabled: true}
	require.NoError(t, repo.Upsert(context.Background(), cred))
	assert.Equal(t, storedID, cred.ID)
	assert.Equal(t, now, cred.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"deleted", 1, nil},
		{"missing", 0, ErrCredentialNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := db.NewCredentialRepository()

			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM provider_credentials WHERE provider = $1")).
				WithArgs("openai").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.Delete(context.Background(), "openai")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDB_MigrateAndHealth(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS provider_credentials")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, db.Migrate(context.Background()))

	mock.ExpectPing()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	require.NoError(t, db.Health(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
