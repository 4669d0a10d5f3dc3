package httpapi

import (
	"errors"
	"net/http"
	"time"

	"modelcatalog/internal/catalog"
	"modelcatalog/internal/models"
	"modelcatalog/internal/storage"
	"modelcatalog/internal/utils"
)

// CredentialsHandler manages stored provider keys. Keys are never echoed back.
type CredentialsHandler struct {
	credentials CredentialService
	providers   ProviderDirectory
	cache       *catalog.Cache
}

// NewCredentialsHandler creates a new credentials handler
func NewCredentialsHandler(credentials CredentialService, dir ProviderDirectory, cache *catalog.Cache) *CredentialsHandler {
	return &CredentialsHandler{credentials: credentials, providers: dir, cache: cache}
}

// PutCredentialRequest is the body of PUT /admin/credentials/{provider}
type PutCredentialRequest struct {
	APIKey      string `json:"api_key"`
	DisplayName string `json:"display_name"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

// CredentialResponse describes a stored credential without its key
type CredentialResponse struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	DisplayName string `json:"display_name"`
	Enabled     bool   `json:"enabled"`
	Fingerprint string `json:"fingerprint,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *CredentialsHandler) toResponse(r *http.Request, cred *models.ProviderCredential) CredentialResponse {
	resp := CredentialResponse{
		ID:          cred.ID.String(),
		Provider:    cred.Provider,
		DisplayName: cred.DisplayName,
		Enabled:     cred.Enabled,
		CreatedAt:   cred.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   cred.UpdatedAt.Format(time.RFC3339),
	}
	if cred.Enabled {
		if key, err := h.credentials.Resolve(r.Context(), cred.Provider); err == nil {
			resp.Fingerprint = h.cache.Fingerprint(key)
		}
	}
	return resp
}

// List handles GET /admin/credentials
func (h *CredentialsHandler) List(w http.ResponseWriter, r *http.Request) {
	creds, err := h.credentials.List(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list credentials")
		return
	}

	out := make([]CredentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, h.toResponse(r, c))
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"credentials": out,
		"count":       len(out),
	})
}

// lookupProvider resolves the {provider} path value, answering 404 for
// providers the registry does not know.
func (h *CredentialsHandler) lookupProvider(w http.ResponseWriter, r *http.Request) (catalog.Source, bool) {
	src, ok := h.providers.Lookup(normalizeProvider(r.PathValue("provider")))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Unsupported provider")
		return nil, false
	}
	return src, true
}

// Get handles GET /admin/credentials/{provider}
func (h *CredentialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	src, ok := h.lookupProvider(w, r)
	if !ok {
		return
	}

	cred, err := h.credentials.Get(r.Context(), src.Name())
	if err != nil {
		if errors.Is(err, storage.ErrCredentialNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Credential not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get credential")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, h.toResponse(r, cred))
}

// Put handles PUT /admin/credentials/{provider}
func (h *CredentialsHandler) Put(w http.ResponseWriter, r *http.Request) {
	src, ok := h.lookupProvider(w, r)
	if !ok {
		return
	}

	var req PutCredentialRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.APIKey == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = src.DisplayName()
	}

	cred, err := h.credentials.Save(r.Context(), src.Name(), displayName, req.APIKey, enabled)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredential) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store credential")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, h.toResponse(r, cred))
}

// Delete handles DELETE /admin/credentials/{provider}
func (h *CredentialsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	src, ok := h.lookupProvider(w, r)
	if !ok {
		return
	}

	err := h.credentials.Remove(r.Context(), src.Name())
	if err != nil {
		if errors.Is(err, storage.ErrCredentialNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Credential not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete credential")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
