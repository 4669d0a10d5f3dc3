package httpapi

import (
	"context"
	"net/http"
	"time"

	"modelcatalog/internal/auth"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/logging"
	"modelcatalog/internal/metrics"
	"modelcatalog/internal/middleware"
	"modelcatalog/internal/models"
	"modelcatalog/internal/providers"
	"modelcatalog/internal/ratelimit"
	"modelcatalog/internal/utils"
)

// ProviderDirectory lists and resolves supported providers.
type ProviderDirectory interface {
	catalog.SourceResolver
	Providers() []providers.Info
}

// CredentialService manages operator-stored provider keys.
type CredentialService interface {
	Resolve(ctx context.Context, provider string) (string, error)
	Get(ctx context.Context, provider string) (*models.ProviderCredential, error)
	List(ctx context.Context) ([]*models.ProviderCredential, error)
	Save(ctx context.Context, provider, displayName, apiKey string, enabled bool) (*models.ProviderCredential, error)
	Remove(ctx context.Context, provider string) error
}

// HealthCheck reports the health of one dependency.
type HealthCheck func(ctx context.Context) error

// Dependencies aggregates all services the HTTP layer needs.
type Dependencies struct {
	Catalog   *catalog.Cache
	Providers ProviderDirectory
	// Credentials is nil when no database is configured.
	Credentials    CredentialService
	RefreshLimiter ratelimit.Limiter
	Metrics        metrics.Recorder
	Logger         *logging.Logger
	JWTSecret      []byte
	HealthChecks   map[string]HealthCheck
}

// NewRouter registers all routes on a fresh ServeMux.
func NewRouter(deps *Dependencies) http.Handler {
	if deps.RefreshLimiter == nil {
		deps.RefreshLimiter = ratelimit.NewNoopLimiter()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoopRecorder()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}

	mux := http.NewServeMux()
	registerRoutes(mux, deps)
	return middleware.RequestLogger(deps.Logger.Named("http"))(mux)
}

func registerRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("GET /health", deps.handleHealth)
	mux.Handle("GET /metrics", deps.Metrics.HTTPHandler())

	viewer := middleware.AdminJWTMiddleware(deps.JWTSecret, auth.RoleViewer)
	admin := middleware.AdminJWTMiddleware(deps.JWTSecret, auth.RoleAdmin)

	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Providers, deps.Credentials, deps.RefreshLimiter, deps.Logger.Named("catalog-api"))
	mux.Handle("GET /admin/catalog/providers", viewer(http.HandlerFunc(catalogHandler.ListProviders)))
	mux.Handle("GET /admin/catalog/providers/{provider}/models", viewer(http.HandlerFunc(catalogHandler.GetModels)))
	mux.Handle("POST /admin/catalog/providers/{provider}/models/refresh", admin(http.HandlerFunc(catalogHandler.RefreshModels)))

	if deps.Credentials == nil {
		return
	}

	credHandler := NewCredentialsHandler(deps.Credentials, deps.Providers, deps.Catalog)
	mux.Handle("GET /admin/credentials", admin(http.HandlerFunc(credHandler.List)))
	mux.Handle("GET /admin/credentials/{provider}", admin(http.HandlerFunc(credHandler.Get)))
	mux.Handle("PUT /admin/credentials/{provider}", admin(http.HandlerFunc(credHandler.Put)))
	mux.Handle("DELETE /admin/credentials/{provider}", admin(http.HandlerFunc(credHandler.Delete)))
}

func (deps *Dependencies) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(deps.HealthChecks))
	for name, check := range deps.HealthChecks {
		if err := check(ctx); err != nil {
			deps.Logger.Warn("health check failed", "dependency", name, "error", err)
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]interface{}{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	utils.RespondWithJSON(w, status, body)
}
