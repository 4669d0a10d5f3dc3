package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelcatalog/internal/auth"
)

var testSecret = []byte("middleware-test-secret")

func mintToken(t *testing.T, roles ...auth.Role) string {
	t.Helper()
	token, _, err := auth.GenerateAdminJWT(testSecret, "ops@example.com", roles, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAdminJWTMiddleware(t *testing.T) {
	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = GetAdminSubject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		required []auth.Role
		header   string
		want     int
	}{
		{"missing header", []auth.Role{auth.RoleViewer}, "", http.StatusUnauthorized},
		{"no bearer prefix", []auth.Role{auth.RoleViewer}, mintToken(t, auth.RoleAdmin), http.StatusUnauthorized},
		{"invalid token", []auth.Role{auth.RoleViewer}, "Bearer nope", http.StatusUnauthorized},
		{"viewer on viewer route", []auth.Role{auth.RoleViewer}, "Bearer " + mintToken(t, auth.RoleViewer), http.StatusNoContent},
		{"admin on viewer route", []auth.Role{auth.RoleViewer}, "Bearer " + mintToken(t, auth.RoleAdmin), http.StatusNoContent},
		{"viewer on admin route", []auth.Role{auth.RoleAdmin}, "Bearer " + mintToken(t, auth.RoleViewer), http.StatusForbidden},
		{"no roles required", nil, "Bearer " + mintToken(t, auth.RoleViewer), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(http.MethodGet, "/admin/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AdminJWTMiddleware(testSecret, tt.required...)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "ops@example.com", gotSubject)
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}
