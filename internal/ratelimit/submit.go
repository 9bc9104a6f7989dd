package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/heysheet/heysheet/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keySubmitForm = "submit:form:%s"

// SubmitLimiter throttles public submissions per form. A nil limiter
// (no redis configured) admits everything.
type SubmitLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewSubmitLimiter(cfg config.Config) *SubmitLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	return &SubmitLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.SubmitRatePerSecond,
		burst:  cfg.SubmitBurst,
	}
}

func (l *SubmitLimiter) Allow(ctx context.Context, formID string) (bool, error) {
	if l == nil {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keySubmitForm, formID), l.rate, l.burst)
}
