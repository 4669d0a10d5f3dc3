package httpapi

import (
	"context"
	"fmt"

	"modelcatalog/internal/catalog"
	"modelcatalog/internal/config"
	"modelcatalog/internal/logging"
	"modelcatalog/internal/metrics"
	"modelcatalog/internal/providers"
	"modelcatalog/internal/ratelimit"
	"modelcatalog/internal/storage"
)

// BuildDependencies wires every service from configuration. The returned
// cleanup releases connections in reverse order of creation.
func BuildDependencies(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Dependencies, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup failed", "error", err)
			}
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	deps := &Dependencies{
		Metrics:      metrics.NewPrometheusRecorder(),
		Logger:       logger,
		JWTSecret:    []byte(cfg.JWTSecret),
		HealthChecks: make(map[string]HealthCheck),
	}

	// Redis is optional unless it backs the catalog store
	var redisClient *storage.RedisClient
	if cfg.RedisEnabled() {
		client, err := storage.NewRedisClient(ctx, storage.RedisConfig{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		switch {
		case err == nil:
			redisClient = client
			closers = append(closers, client.Close)
			deps.HealthChecks["redis"] = client.Health
		case cfg.Catalog.Store == config.StoreRedis:
			return fail(fmt.Errorf("failed to initialize Redis: %w", err))
		default:
			logger.Warn("redis unavailable, continuing without it", "error", err)
		}
	}

	var compatible []providers.CompatibleConfig
	if cfg.Catalog.ProvidersFile != "" {
		file, err := providers.LoadFile(cfg.Catalog.ProvidersFile)
		if err != nil {
			return fail(err)
		}
		compatible = file.Providers
	}

	registry, err := providers.NewRegistry(providers.RegistryConfig{
		OpenAIBaseURL:   cfg.Catalog.OpenAIBaseURL,
		DeepSeekBaseURL: cfg.Catalog.DeepSeekBaseURL,
		FetchTimeout:    cfg.Catalog.FetchTimeout,
		Compatible:      compatible,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to initialize provider registry: %w", err))
	}
	closers = append(closers, registry.Close)
	deps.Providers = registry

	opts := []catalog.Option{
		catalog.WithTTL(cfg.Catalog.TTL),
		catalog.WithLogger(logger.Named("catalog")),
		catalog.WithMetrics(deps.Metrics),
	}
	if cfg.Catalog.FingerprintSecret != "" {
		opts = append(opts, catalog.WithFingerprintSecret([]byte(cfg.Catalog.FingerprintSecret)))
	}
	if cfg.Catalog.Coalesce {
		opts = append(opts, catalog.WithCoalescing())
	}
	if cfg.Catalog.Store == config.StoreRedis {
		opts = append(opts, catalog.WithStore(catalog.NewRedisStore(redisClient.Client(), catalog.RedisStoreConfig{
			Retention: cfg.Catalog.RedisRetention,
		})))
	}

	cache, err := catalog.New(registry, opts...)
	if err != nil {
		return fail(err)
	}
	deps.Catalog = cache

	if cfg.DatabaseEnabled() {
		resolver, db, err := buildCredentials(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, db.Close)
		deps.HealthChecks["database"] = db.Health
		deps.Credentials = resolver
	}

	if redisClient != nil {
		deps.RefreshLimiter = ratelimit.NewRateLimiter(redisClient.Client(), cfg.RefreshRateLimit, ratelimit.DefaultWindow)
	} else {
		deps.RefreshLimiter = ratelimit.NewNoopLimiter()
	}

	logger.Info("dependencies initialized",
		"store", cfg.Catalog.Store,
		"ttl", cfg.Catalog.TTL,
		"providers", len(registry.Providers()),
		"credentials", cfg.DatabaseEnabled(),
		"redis", redisClient != nil)

	return deps, cleanup, nil
}

func buildCredentials(ctx context.Context, cfg *config.Config) (*storage.CredentialResolver, *storage.DB, error) {
	enc, err := storage.NewEncryptionFromHex(cfg.Credential.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize encryption: %w", err)
	}

	dbCfg := storage.DefaultDBConfig()
	dbCfg.DSN = cfg.Database.URL
	dbCfg.MaxOpenConns = cfg.Database.MaxOpenConns
	dbCfg.MaxIdleConns = cfg.Database.MaxIdleConns
	dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	dbCfg.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	dbCfg.QueryTimeout = cfg.Database.QueryTimeout

	db, err := storage.NewDB(dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	resolver := storage.NewCredentialResolver(db.NewCredentialRepository(), enc, cfg.Credential.CacheSize, cfg.Credential.CacheTTL)
	return resolver, db, nil
}
