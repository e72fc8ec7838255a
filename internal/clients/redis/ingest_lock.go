package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

const defaultLockKey = "cytometry:ingest:lock"

// ErrLockHeld is returned by Acquire when another owner holds the lock.
var ErrLockHeld = errors.New("ingest lock held")

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// IngestLock is a cross-process exclusive lock for ingestion, stored as a
// single key with a TTL so a crashed holder cannot wedge the store.
type IngestLock struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
	ttl time.Duration
}

// NewClient dials addr and verifies it with a ping.
func NewClient(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewIngestLock(rdb *goredis.Client, log *logger.Logger, ttl time.Duration) *IngestLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &IngestLock{
		log: log.With("service", "RedisIngestLock"),
		rdb: rdb,
		key: defaultLockKey,
		ttl: ttl,
	}
}

// Acquire takes the lock for owner without waiting. The returned function
// releases it only if owner still holds it.
func (l *IngestLock) Acquire(ctx context.Context, owner string) (func(context.Context) error, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	l.log.Debug("ingest lock acquired", "owner", owner, "ttl", l.ttl.String())
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, owner).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("release ingest lock: %w", err)
		}
		l.log.Debug("ingest lock released", "owner", owner)
		return nil
	}, nil
}

func (l *IngestLock) Held(ctx context.Context) (bool, error) {
	n, err := l.rdb.Exists(ctx, l.key).Result()
	if err != nil {
		return false, fmt.Errorf("check ingest lock: %w", err)
	}
	return n > 0, nil
}
