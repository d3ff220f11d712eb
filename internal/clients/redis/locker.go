package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/screenplay-backend/internal/platform/keylock"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type Locker struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

var _ keylock.Locker = (*Locker)(nil)

func NewLocker(log *logger.Logger, addr string) (*Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Locker{
		log:    log.With("service", "RedisLocker"),
		rdb:    rdb,
		prefix: "screenplay:lock:",
	}, nil
}

// Client exposes the connection for collaborators that share it (rate limit store).
func (l *Locker) Client() *goredis.Client { return l.rdb }

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l == nil || l.rdb == nil {
		return nil, false, fmt.Errorf("redis locker not initialized")
	}
	k := l.prefix + key
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx %s: %w", k, err)
	}
	if !ok {
		return nil, false, nil
	}
	return func() {
		// Release with a fresh context so a cancelled request still frees the lock.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{k}, token).Err(); err != nil {
			l.log.Warn("Redis lock release failed", "key", k, "error", err)
		}
	}, true, nil
}

func (l *Locker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
