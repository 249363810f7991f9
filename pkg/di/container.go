// Package di wires the long-lived collaborators — relational pool, cache
// store, search index — and hands out per-use components built on them.
package di

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/filmoteka/searchsync/cache"
	"github.com/filmoteka/searchsync/etl"
	"github.com/filmoteka/searchsync/internal/cacheinfra"
	"github.com/filmoteka/searchsync/internal/config"
	"github.com/filmoteka/searchsync/internal/esinfra"
	"github.com/filmoteka/searchsync/repository"
	"github.com/filmoteka/searchsync/search"
)

// Container owns the process-wide clients. Components created from it
// (syncers, repositories) are cheap and built per use; the clients
// themselves live as long as the container.
type Container struct {
	cfg    config.Settings
	logger *slog.Logger

	db      *bun.DB
	redis   *redis.Client
	cache   cache.Cache
	storage search.Storage
}

// New builds the container from settings. A nil logger falls back to
// slog.Default.
func New(cfg config.Settings, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqldb, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	storage, err := esinfra.New(cfg.ElasticURL)
	if err != nil {
		return nil, fmt.Errorf("connect elasticsearch: %w", err)
	}

	return &Container{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		redis:   rdb,
		cache:   cacheinfra.NewRedisCache(rdb),
		storage: storage,
	}, nil
}

// NewInProcess builds a container variant whose cache lives in process
// memory instead of Redis. Intended for local runs and tests; the
// relational and index clients are wired the same way.
func NewInProcess(cfg config.Settings, logger *slog.Logger) (*Container, error) {
	c, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}

	memCfg := cacheinfra.DefaultConfig()
	if cfg.CacheTTL > memCfg.TTL {
		memCfg.TTL = cfg.CacheTTL
	}
	mem, err := cacheinfra.NewMemoryCache(memCfg)
	if err != nil {
		return nil, err
	}
	c.cache = mem
	return c, nil
}

// Close releases the relational pool and the Redis connection.
func (c *Container) Close() error {
	var firstErr error
	if err := c.db.Close(); err != nil {
		firstErr = err
	}
	if err := c.redis.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Cache returns the shared cache store.
func (c *Container) Cache() cache.Cache { return c.cache }

// Storage returns the shared search index client.
func (c *Container) Storage() search.Storage { return c.storage }

// Syncer builds one sync pass starting from the given watermark. The
// syncer is created and discarded per run.
func (c *Container) Syncer(watermark time.Time) *etl.Syncer {
	extractor := etl.NewPostgresExtractor(c.db, watermark, c.cfg.BatchSize)
	loader := etl.NewLoader(c.storage, c.logger)
	return etl.NewSyncer(extractor, loader, c.cfg.SchemasDir, c.logger)
}

// NewRepository builds a cache-aside repository for document type T on
// the container's shared cache and index clients.
//
// Go methods cannot have type parameters, so this is a package-level
// function: NewRepository[model.Film](container).
func NewRepository[T any](c *Container) *repository.Repository[T] {
	return repository.New[T](c.cache, c.storage, c.cfg.CacheTTL, c.logger)
}
