package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/quote"
	"github.com/redis/go-redis/v9"
)

// QuoteCache is a read-through cache for loan quotes. Quotes are pure
// functions of (principal, duration), so cached entries never go stale while
// the rate schedule is unchanged; the TTL bounds exposure to a redeploy with
// a new schedule.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuoteCache(addr string, ttl time.Duration) *QuoteCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &QuoteCache{client: rdb, ttl: ttl}
}

func key(principalMinor int64, durationDays int) string {
	return fmt.Sprintf("quote:%d:%d", principalMinor, durationDays)
}

func (c *QuoteCache) Get(ctx context.Context, principalMinor int64, durationDays int) (*quote.LoanQuote, bool) {
	raw, err := c.client.Get(ctx, key(principalMinor, durationDays)).Result()
	if err != nil {
		return nil, false
	}
	var q quote.LoanQuote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, false
	}
	return &q, true
}

func (c *QuoteCache) Set(ctx context.Context, q quote.LoanQuote) error {
	raw, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(q.PrincipalMinor, q.DurationDays), raw, c.ttl).Err()
}

func (c *QuoteCache) Close() error {
	return c.client.Close()
}
