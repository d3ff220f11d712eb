package app

import (
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/screenplay-backend/internal/clients/redis"
	"github.com/yungbote/screenplay-backend/internal/platform/keylock"
	"github.com/yungbote/screenplay-backend/internal/platform/llm"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type Clients struct {
	LLM llm.Client
	// Locker is redis-backed when REDIS_ADDR is set, otherwise process-local.
	Locker keylock.Locker
	// Redis is nil without REDIS_ADDR.
	Redis *goredis.Client

	redisLocker *redis.Locker
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := llm.New(log, cfg.LLM())
	if err != nil {
		return Clients{}, fmt.Errorf("init llm client: %w", err)
	}

	c := Clients{LLM: ai}
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		locker, err := redis.NewLocker(log, cfg.RedisAddr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis locker: %w", err)
		}
		c.redisLocker = locker
		c.Locker = locker
		c.Redis = locker.Client()
	} else {
		log.Warn("REDIS_ADDR not set; generation locks and rate limits are per process")
		c.Locker = keylock.NewLocal()
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.redisLocker != nil {
		_ = c.redisLocker.Close()
	}
}
