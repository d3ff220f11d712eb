package middleware

import (
	"net/http"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests uint
	// Redis shares counters across instances; nil keeps them in process memory.
	Redis *redis.Client
}

// RateLimit caps AI requests per caller. Authenticated requests are keyed by user id, anything else by
// client IP.
func RateLimit(log *logger.Logger, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 100
	}
	log = log.With("middleware", "RateLimit")

	var store ratelimit.Store
	if cfg.Redis != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: cfg.Redis,
			Rate:        cfg.Window,
			Limit:       cfg.MaxRequests,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  cfg.Window,
			Limit: cfg.MaxRequests,
		})
	}
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			retry := time.Until(info.ResetTime).Round(time.Second)
			log.Warn("Rate limit exceeded", "key", rateLimitKey(c), "path", c.FullPath(), "retry_after", retry)
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())))
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited",
				errTooManyRequests(retry))
		},
		KeyFunc: rateLimitKey,
		BeforeResponse: func(c *gin.Context, info ratelimit.Info) {
			c.Header("X-RateLimit-Limit", strconv.Itoa(int(info.Limit)))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(int(info.RemainingHits)))
		},
	})
}

func rateLimitKey(c *gin.Context) string {
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
		return "user:" + rd.UserID.String()
	}
	return "ip:" + c.ClientIP()
}

type rateLimitError struct{ retry time.Duration }

func (e rateLimitError) Error() string {
	return "Too many requests. Try again in " + e.retry.String()
}

func errTooManyRequests(retry time.Duration) error { return rateLimitError{retry: retry} }
