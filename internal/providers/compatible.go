package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"modelcatalog/internal/catalog"
)

const defaultModelsPath = "/models"

// maxModelListBody caps how much of a model list response is read.
const maxModelListBody = 4 << 20

// CompatibleSource lists models from any endpoint that answers
// GET {base}/models with an OpenAI-shaped {"data":[{"id":...}]} body.
type CompatibleSource struct {
	name        string
	displayName string
	endpoint    string
	authHeader  string
	authPrefix  string
	idFilter    string
	requiresKey bool
	defaults    []catalog.ModelDescriptor
	client      *http.Client
}

// NewCompatibleSource builds a source from validated configuration.
func NewCompatibleSource(cfg CompatibleConfig, client *http.Client) *CompatibleSource {
	path := cfg.ModelsPath
	if path == "" {
		path = defaultModelsPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	display := cfg.DisplayName
	if display == "" {
		display = cfg.Name
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &CompatibleSource{
		name:        strings.ToLower(strings.TrimSpace(cfg.Name)),
		displayName: display,
		endpoint:    strings.TrimSuffix(cfg.BaseURL, "/") + path,
		authHeader:  cfg.AuthHeader,
		authPrefix:  cfg.AuthPrefix,
		idFilter:    cfg.IDFilter,
		requiresKey: cfg.keyRequired(),
		defaults:    cfg.descriptors(),
		client:      client,
	}
}

func (s *CompatibleSource) Name() string        { return s.name }
func (s *CompatibleSource) DisplayName() string { return s.displayName }

func (s *CompatibleSource) ShouldFetch(apiKey string) bool {
	if !s.requiresKey {
		return true
	}
	return catalog.HasKey(apiKey)
}

func (s *CompatibleSource) FetchModels(ctx context.Context, apiKey string) ([]catalog.ModelDescriptor, error) {
	var authenticator Authenticator = NoAuth{}
	if apiKey != "" {
		authenticator = NewSimpleAPIKeyAuth(apiKey, s.authHeader, s.authPrefix)
	} else if s.requiresKey {
		return nil, ErrMissingAPIKey
	}

	authCtx, err := authenticator.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if err := authCtx.ApplyToRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to apply auth: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s list models: %w", s.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxModelListBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(s.name, resp.StatusCode, body)
	}

	models, err := parseModelIDs(body, "data")
	if err != nil {
		return nil, err
	}
	if s.idFilter == "" {
		return models, nil
	}

	filtered := models[:0]
	for _, m := range models {
		if strings.Contains(m.ID, s.idFilter) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func (s *CompatibleSource) Defaults() []catalog.ModelDescriptor {
	return s.defaults
}
