package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"modelcatalog/internal/catalog"
	"modelcatalog/internal/logging"
	"modelcatalog/internal/middleware"
	"modelcatalog/internal/providers"
	"modelcatalog/internal/ratelimit"
	"modelcatalog/internal/storage"
	"modelcatalog/internal/utils"
)

// ProviderKeyHeader lets a caller supply the provider API key for one request.
const ProviderKeyHeader = "X-Provider-Api-Key"

// CatalogHandler serves model catalog endpoints
type CatalogHandler struct {
	cache       *catalog.Cache
	providers   ProviderDirectory
	credentials CredentialService
	limiter     ratelimit.Limiter
	logger      *logging.Logger
}

// NewCatalogHandler creates a catalog handler. credentials may be nil.
func NewCatalogHandler(cache *catalog.Cache, dir ProviderDirectory, credentials CredentialService, limiter ratelimit.Limiter, logger *logging.Logger) *CatalogHandler {
	return &CatalogHandler{
		cache:       cache,
		providers:   dir,
		credentials: credentials,
		limiter:     limiter,
		logger:      logger,
	}
}

// ProvidersResponse lists supported providers
type ProvidersResponse struct {
	Providers []providers.Info `json:"providers"`
	Count     int              `json:"count"`
}

// ModelsResponse is the body of the model list endpoints
type ModelsResponse struct {
	Provider string                    `json:"provider"`
	Models   []catalog.ModelDescriptor `json:"models"`
	Count    int                       `json:"count"`
}

// ListProviders handles GET /admin/catalog/providers
func (h *CatalogHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	list := h.providers.Providers()
	utils.RespondWithJSON(w, http.StatusOK, ProvidersResponse{Providers: list, Count: len(list)})
}

// GetModels handles GET /admin/catalog/providers/{provider}/models
func (h *CatalogHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	provider := normalizeProvider(r.PathValue("provider"))
	apiKey := h.resolveKey(r.Context(), provider, r)

	models := h.cache.GetAvailableModels(r.Context(), provider, apiKey)
	utils.RespondWithJSON(w, http.StatusOK, ModelsResponse{Provider: provider, Models: models, Count: len(models)})
}

// RefreshModels handles POST /admin/catalog/providers/{provider}/models/refresh
func (h *CatalogHandler) RefreshModels(w http.ResponseWriter, r *http.Request) {
	provider := normalizeProvider(r.PathValue("provider"))

	subject, _ := middleware.GetAdminSubject(r.Context())
	decision, err := h.limiter.Allow(r.Context(), "refresh:"+subject+":"+provider)
	if err != nil {
		// Limiter failures do not block operators
		h.logger.Warn("refresh rate limit check failed", "provider", provider, "error", err)
	} else if !decision.Allowed {
		if !decision.ResetAt.IsZero() {
			retry := int(time.Until(decision.ResetAt).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))
		}
		utils.RespondWithError(w, http.StatusTooManyRequests, "Refresh rate limit exceeded")
		return
	}

	apiKey := h.resolveKey(r.Context(), provider, r)
	models := h.cache.RefreshModelCache(r.Context(), provider, apiKey)
	utils.RespondWithJSON(w, http.StatusOK, ModelsResponse{Provider: provider, Models: models, Count: len(models)})
}

// resolveKey prefers the request header, then a stored credential, then none
func (h *CatalogHandler) resolveKey(ctx context.Context, provider string, r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(ProviderKeyHeader)); key != "" {
		return key
	}
	if h.credentials == nil {
		return ""
	}

	key, err := h.credentials.Resolve(ctx, provider)
	if err != nil {
		if !errors.Is(err, storage.ErrCredentialNotFound) {
			h.logger.Warn("failed to resolve stored credential", "provider", provider, "error", err)
		}
		return ""
	}
	return key
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
