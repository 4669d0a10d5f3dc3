package providers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"modelcatalog/internal/catalog"
)

// DefaultFetchTimeout bounds a single live model list request.
const DefaultFetchTimeout = 15 * time.Second

// Info describes a registered provider for listing.
type Info struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// RegistryConfig controls which sources NewRegistry wires.
type RegistryConfig struct {
	OpenAIBaseURL   string
	DeepSeekBaseURL string
	FetchTimeout    time.Duration
	Compatible      []CompatibleConfig
	// HTTPClient overrides the shared client; FetchTimeout is ignored when set.
	HTTPClient *http.Client
}

// Registry maps provider names to catalog sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]catalog.Source
	client  *http.Client
}

// NewRegistry wires the built-in sources plus any configured compatible ones.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.FetchTimeout
		if timeout <= 0 {
			timeout = DefaultFetchTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	r := &Registry{
		sources: make(map[string]catalog.Source),
		client:  client,
	}

	builtin := []catalog.Source{
		NewOpenAISource(cfg.OpenAIBaseURL, client),
		NewAnthropicSource(),
		NewDeepSeekSource(cfg.DeepSeekBaseURL, client),
	}
	for _, src := range builtin {
		if err := r.Register(src); err != nil {
			return nil, err
		}
	}

	for _, c := range cfg.Compatible {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid provider config: %w", err)
		}
		if err := r.Register(NewCompatibleSource(c, client)); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// NewEmptyRegistry returns a registry with no sources, for callers that
// register their own.
func NewEmptyRegistry() *Registry {
	return &Registry{sources: make(map[string]catalog.Source)}
}

// Register adds src under its normalized name.
func (r *Registry) Register(src catalog.Source) error {
	name := normalizeName(src.Name())
	if name == "" {
		return fmt.Errorf("provider name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
	}
	r.sources[name] = src
	return nil
}

// Lookup implements catalog.SourceResolver. Names are case-insensitive.
func (r *Registry) Lookup(provider string) (catalog.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.sources[normalizeName(provider)]
	return src, ok
}

// Providers lists registered providers sorted by name.
func (r *Registry) Providers() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.sources))
	for name, src := range r.sources {
		out = append(out, Info{Name: name, DisplayName: src.DisplayName()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close releases idle connections held by the shared HTTP client.
func (r *Registry) Close() error {
	if r.client != nil {
		r.client.CloseIdleConnections()
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
