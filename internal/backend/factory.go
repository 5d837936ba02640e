package backend

import (
	"context"
	"fmt"
	"time"

	"bakery/internal/cache"
	"bakery/internal/core"
	"bakery/internal/log"
	"bakery/internal/storage"
	"bakery/internal/storage/memory"
	"bakery/internal/storage/postgres"
)

const (
	listCacheSize   = 16
	listCachePrefix = "bakery:"
	cacheSweepEvery = 5 * time.Minute
	defaultListTTL  = time.Minute
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) OpenStore(ctx context.Context, config Config) (storage.TransactionStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil

	case PostgresBackend:
		repo, err := postgres.Open(ctx, config.DatabaseURL, postgres.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized PostgreSQL backend")
		return repo, nil

	case MemoryBackend:
		f.logger.WarnContext(ctx, "Initialized memory backend, data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// OpenCache returns a nil cache for NoCache. The cleanup func is never nil.
func (f *DefaultFactory) OpenCache(ctx context.Context, config Config) (cache.Cache[[]core.Transaction], CleanupFunc, error) {
	noop := func() error { return nil }
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = defaultListTTL
	}

	switch config.Cache {
	case "", NoCache:
		f.logger.InfoContext(ctx, "List cache disabled")
		return nil, noop, nil

	case MemoryCache:
		lru := cache.NewLRUCache[[]core.Transaction](listCacheSize, ttl)
		mgr := cache.NewManager()
		mgr.Register(lru)
		mgr.StartCleanup(cacheSweepEvery)
		f.logger.InfoContext(ctx, "Initialized in-memory list cache", "ttl", ttl.String())
		return lru, func() error { mgr.Stop(); return nil }, nil

	case RedisCache:
		client, err := cache.NewRedisClient(ctx, config.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to redis: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized redis list cache", "ttl", ttl.String())
		return cache.NewRedisCache[[]core.Transaction](client, listCachePrefix, ttl), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported cache type: %s", config.Cache)
	}
}
