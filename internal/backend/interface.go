package backend

import (
	"context"
	"time"

	"bakery/internal/cache"
	"bakery/internal/core"
	"bakery/internal/storage"
)

// CleanupFunc releases whatever a factory call opened.
type CleanupFunc func() error

// Factory opens the storage engine and list cache named by Config.
type Factory interface {
	OpenStore(ctx context.Context, config Config) (storage.TransactionStore, error)
	OpenCache(ctx context.Context, config Config) (cache.Cache[[]core.Transaction], CleanupFunc, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	Cache    CacheType
	RedisURL string
	CacheTTL time.Duration
}

// BackendType names a storage engine.
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CacheType names a list cache implementation.
type CacheType string

const (
	NoCache     CacheType = "none"
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
)

func (ct CacheType) IsValid() bool {
	switch ct {
	case NoCache, MemoryCache, RedisCache:
		return true
	default:
		return false
	}
}
