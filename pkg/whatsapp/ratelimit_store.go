package whatsapp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enviarzap/whatsapp-link-sender/pkg/env"
)

// NewLimitStoreFromEnv builds the configured persistence backend.
// RATE_STORE_DRIVER: "memory" (default), "file", "redis" or "postgres".
func NewLimitStoreFromEnv() (LimitStore, error) {
	driver := strings.ToLower(env.GetEnvStringOrDefault("RATE_STORE_DRIVER", "memory"))

	switch driver {
	case "", "memory":
		return NewMemoryLimitStore(), nil
	case "file":
		dir := env.GetEnvStringOrDefault("RATE_STORE_FILE_DIR", "data/ratelimit")
		return NewFileLimitStore(dir)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     env.GetEnvStringOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
			Password: env.GetEnvStringOrDefault("REDIS_PASSWORD", ""),
			DB:       env.GetEnvIntOrDefault("REDIS_DB", 0),
		})
		ttl := env.GetEnvDurationOrDefault("REDIS_TTL", 48*time.Hour)
		return NewRedisLimitStore(rdb, ttl), nil
	case "postgres", "postgresql", "pgx":
		dsn := env.MustGetEnvString("POSTGRES_DSN")
		return NewPostgresLimitStore(dsn)
	default:
		return NewMemoryLimitStore(), nil
	}
}

// MemoryLimitStore keeps blobs in process memory. Default backend and the one
// the tests use.
type MemoryLimitStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryLimitStore() *MemoryLimitStore {
	return &MemoryLimitStore{blobs: make(map[string][]byte)}
}

func (s *MemoryLimitStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (s *MemoryLimitStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make([]byte, len(data))
	copy(raw, data)
	s.blobs[key] = raw
	return nil
}

func (s *MemoryLimitStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)
	return nil
}

// FileLimitStore persists one JSON file per client key, the server-side
// analog of the browser's localStorage entry.
type FileLimitStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileLimitStore(dir string) (*FileLimitStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileLimitStore{dir: dir}, nil
}

// fileSafeKey flattens a storage key into a file name.
func fileSafeKey(key string) string {
	replacer := strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_")
	return replacer.Replace(key) + ".json"
}

func (s *FileLimitStore) path(key string) string {
	return filepath.Join(s.dir, fileSafeKey(key))
}

func (s *FileLimitStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return raw, err
}

func (s *FileLimitStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileLimitStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
