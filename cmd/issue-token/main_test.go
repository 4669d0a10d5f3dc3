package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelcatalog/internal/auth"
)

func TestRun_Token(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	var out bytes.Buffer

	require.NoError(t, run([]string{"token", "ops@example.com", "-r", "admin", "--ttl", "1h"}, &out))

	claims, err := auth.ValidateAdminJWT(strings.TrimSpace(out.String()), []byte("cli-secret"))
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestRun_TokenRejectsUnknownRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	var out bytes.Buffer

	err := run([]string{"token", "ops", "-r", "root"}, &out)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestRun_Keygen(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, run([]string{"keygen"}, &out))
	assert.Len(t, strings.TrimSpace(out.String()), 64)
}
