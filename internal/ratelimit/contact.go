package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/sds-studio/sds/internal/config"
	"go.uber.org/zap"
)

const (
	keyContactIntake = "contact:intake:ip:%s"

	// One submission every 12 seconds sustained, five back to back.
	contactRate  = 5.0 / 60.0
	contactBurst = 5
)

// ContactLimiter throttles public contact submissions per client IP.
// With a redis address configured the bucket is shared across
// instances; otherwise it degrades to the in-process bucket.
type ContactLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
	local  *LocalBucket
}

func NewContactLimiter(cfg config.Config, log *zap.Logger) *ContactLimiter {
	l := &ContactLimiter{
		log:   log.Named("ratelimit.contact"),
		local: NewLocalBucket(),
	}

	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
		})
		l.bucket = NewTokenBucket(client)
	}
	return l
}

// Allow reports whether the client may submit. Redis failures fall
// through to the local bucket rather than blocking the form.
func (l *ContactLimiter) Allow(ctx context.Context, ip string) bool {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return true
	}
	key := fmt.Sprintf(keyContactIntake, ip)

	if l.bucket != nil {
		res, err := l.bucket.Allow(ctx, key, contactRate, contactBurst)
		if err == nil {
			return res.Allowed
		}
		l.log.Warn("redis rate limit check failed, using local bucket", zap.Error(err))
	}

	return l.local.Allow(key, contactRate, contactBurst).Allowed
}
