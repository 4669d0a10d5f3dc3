package utils

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{"bad request", http.StatusBadRequest, "Invalid input"},
		{"unauthorized", http.StatusUnauthorized, "Authentication required"},
		{"too many requests", http.StatusTooManyRequests, "Refresh rate limit exceeded"},
		{"internal server error", http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			RespondWithError(w, tt.code, tt.message)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.message, response.Error)
		})
	}
}

func TestRespondWithJSON(t *testing.T) {
	t.Run("payload", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := RespondWithJSON(w, http.StatusOK, map[string]interface{}{"provider": "openai", "count": 2})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		assert.JSONEq(t, `{"provider":"openai","count":2}`, w.Body.String())
	})

	t.Run("unencodable payload", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := RespondWithJSON(w, http.StatusOK, math.Inf(1))
		assert.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to encode response"}`, w.Body.String())
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		APIKey string `json:"api_key"`
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `{"api_key":"k"}`, false},
		{"unknown field", `{"api_key":"k","extra":1}`, true},
		{"trailing data", `{"api_key":"k"}{"api_key":"x"}`, true},
		{"malformed", `{"api_key":`, true},
		{"too large", `{"api_key":"` + strings.Repeat("a", maxRequestBody) + `"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.input))
			var dst body
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "k", dst.APIKey)
		})
	}
}
