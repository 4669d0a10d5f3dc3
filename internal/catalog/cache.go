package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"modelcatalog/internal/logging"
	"modelcatalog/internal/metrics"
)

// DefaultTTL is how long an entry is served without a refresh attempt.
const DefaultTTL = 24 * time.Hour

// ErrEmptyCatalog is reported when a provider answers with no usable models.
var ErrEmptyCatalog = errors.New("provider returned no usable models")

// Source fetches one provider's model list. Implementations live in the
// providers package.
type Source interface {
	// Name is the provider identifier used for lookups and keys.
	Name() string
	// DisplayName is the human-readable provider label.
	DisplayName() string
	// ShouldFetch reports whether a live fetch is worth attempting with apiKey.
	ShouldFetch(apiKey string) bool
	// FetchModels performs the live fetch.
	FetchModels(ctx context.Context, apiKey string) ([]ModelDescriptor, error)
	// Defaults is the built-in catalog used when live data is unavailable.
	Defaults() []ModelDescriptor
}

// SourceResolver resolves provider names to sources.
type SourceResolver interface {
	Lookup(provider string) (Source, bool)
}

// Cache serves model catalogs per (provider, credential) with TTL-bounded
// freshness and fallback to stale or built-in data. It never returns an error
// for a supported provider.
//
// Without coalescing, concurrent misses for the same key each fetch and the
// last write wins; every such write is an equally valid snapshot.
type Cache struct {
	sources SourceResolver
	store   Store
	ttl     time.Duration
	fp      *Fingerprinter
	logger  *logging.Logger
	metrics metrics.Recorder
	now     func() time.Time
	group   *singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore sets the entry store. Defaults to a fresh MemoryStore.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// WithTTL sets the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithFingerprintSecret keys credential fingerprints with secret.
func WithFingerprintSecret(secret []byte) Option {
	return func(c *Cache) { c.fp = NewFingerprinter(secret) }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithCoalescing makes concurrent refreshes of one key share a single
// in-flight fetch.
func WithCoalescing() Option {
	return func(c *Cache) { c.group = &singleflight.Group{} }
}

// New builds a cache over the given sources.
func New(sources SourceResolver, opts ...Option) (*Cache, error) {
	if sources == nil {
		return nil, fmt.Errorf("catalog: source resolver is required")
	}

	c := &Cache{
		sources: sources,
		ttl:     DefaultTTL,
		fp:      NewFingerprinter(nil),
		logger:  logging.Nop(),
		metrics: metrics.NewNoopRecorder(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	return c, nil
}

// Fingerprint exposes the credential fingerprint used for partitioning.
func (c *Cache) Fingerprint(apiKey string) string {
	return c.fp.Fingerprint(apiKey)
}

// GetAvailableModels returns the best available model list for provider.
// Unsupported providers yield an empty list.
func (c *Cache) GetAvailableModels(ctx context.Context, provider, apiKey string) []ModelDescriptor {
	src, ok := c.sources.Lookup(provider)
	if !ok {
		c.metrics.ObserveLookup(metrics.UnknownProvider, metrics.OutcomeUnsupported)
		c.logger.Debug("unsupported provider requested", "provider", provider)
		return []ModelDescriptor{}
	}

	key := Key{Provider: src.Name(), Fingerprint: c.fp.Fingerprint(apiKey)}
	prev := c.load(ctx, key)
	if prev != nil && prev.Age(c.now()) < c.ttl {
		c.metrics.ObserveLookup(key.Provider, metrics.OutcomeHit)
		return cloneModels(prev.Models)
	}

	return c.populate(ctx, src, key, apiKey, prev)
}

// RefreshModelCache evicts the entry for (provider, apiKey) and repopulates
// it, attempting a live fetch whenever the provider's gating allows one.
func (c *Cache) RefreshModelCache(ctx context.Context, provider, apiKey string) []ModelDescriptor {
	src, ok := c.sources.Lookup(provider)
	if !ok {
		c.metrics.ObserveLookup(metrics.UnknownProvider, metrics.OutcomeUnsupported)
		return []ModelDescriptor{}
	}

	key := Key{Provider: src.Name(), Fingerprint: c.fp.Fingerprint(apiKey)}
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn("failed to evict catalog entry", "provider", key.Provider, "fingerprint", key.Fingerprint, "error", err)
	}
	c.logger.Info("catalog refresh requested", "provider", key.Provider, "fingerprint", key.Fingerprint)

	return c.populate(ctx, src, key, apiKey, nil)
}

func (c *Cache) populate(ctx context.Context, src Source, key Key, apiKey string, prev *Entry) []ModelDescriptor {
	if !src.ShouldFetch(apiKey) {
		entry := c.newEntry(key, src.Defaults(), OriginDefaults)
		c.save(ctx, entry)
		c.metrics.ObserveLookup(key.Provider, metrics.OutcomeSkipped)
		return cloneModels(entry.Models)
	}

	if c.group == nil {
		return cloneModels(c.fetch(ctx, src, key, apiKey, prev))
	}

	// The shared flight ignores any single caller's cancellation; the source's
	// HTTP client timeout still bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		return c.fetch(flightCtx, src, key, apiKey, prev), nil
	})
	select {
	case res := <-ch:
		return cloneModels(res.Val.([]ModelDescriptor))
	case <-ctx.Done():
		return cloneModels(fallbackModels(src, prev))
	}
}

// fetch performs one live fetch and applies the fallback order on failure:
// previous entry first, then built-in defaults.
func (c *Cache) fetch(ctx context.Context, src Source, key Key, apiKey string, prev *Entry) []ModelDescriptor {
	start := time.Now()
	models, err := src.FetchModels(ctx, apiKey)
	if err == nil {
		models = normalizeModels(models)
		if len(models) == 0 {
			err = ErrEmptyCatalog
		}
	}
	c.metrics.ObserveFetch(key.Provider, time.Since(start), err)

	if err == nil {
		entry := c.newEntry(key, models, OriginLive)
		c.save(ctx, entry)
		c.metrics.ObserveLookup(key.Provider, metrics.OutcomeLive)
		c.logger.Debug("catalog refreshed", "provider", key.Provider, "fingerprint", key.Fingerprint, "count", len(models))
		return entry.Models
	}

	if ctx.Err() != nil {
		// Caller went away. Serve the fallback but leave the store untouched so
		// the next caller retries.
		c.logger.Debug("model fetch abandoned by caller",
			"provider", key.Provider, "fingerprint", key.Fingerprint, "error", err)
		if prev != nil {
			c.metrics.ObserveLookup(key.Provider, metrics.OutcomeStaleFallback)
		} else {
			c.metrics.ObserveLookup(key.Provider, metrics.OutcomeDefaultFallback)
		}
		return fallbackModels(src, prev)
	}

	if prev != nil {
		c.logger.Warn("model fetch failed, serving previous catalog",
			"provider", key.Provider, "fingerprint", key.Fingerprint,
			"age", prev.Age(c.now()).Round(time.Second), "error", err)
		c.metrics.ObserveLookup(key.Provider, metrics.OutcomeStaleFallback)
		return prev.Models
	}

	c.logger.Warn("model fetch failed, serving built-in catalog",
		"provider", key.Provider, "fingerprint", key.Fingerprint, "error", err)
	entry := c.newEntry(key, src.Defaults(), OriginDefaults)
	c.save(ctx, entry)
	c.metrics.ObserveLookup(key.Provider, metrics.OutcomeDefaultFallback)
	return entry.Models
}

func fallbackModels(src Source, prev *Entry) []ModelDescriptor {
	if prev != nil {
		return prev.Models
	}
	return normalizeModels(src.Defaults())
}

func (c *Cache) newEntry(key Key, models []ModelDescriptor, origin Origin) *Entry {
	return &Entry{
		Provider:    key.Provider,
		Fingerprint: key.Fingerprint,
		Models:      normalizeModels(models),
		FetchedAt:   c.now(),
		Origin:      origin,
	}
}

// load treats store failures as a miss.
func (c *Cache) load(ctx context.Context, key Key) *Entry {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("failed to read catalog entry", "provider", key.Provider, "fingerprint", key.Fingerprint, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return entry
}

func (c *Cache) save(ctx context.Context, entry *Entry) {
	if err := c.store.Put(ctx, entry); err != nil {
		c.logger.Warn("failed to store catalog entry", "provider", entry.Provider, "fingerprint", entry.Fingerprint, "error", err)
	}
}
