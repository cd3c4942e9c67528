package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenLedger remembers consumed one-time token ids until they would have
// expired anyway.
type TokenLedger struct {
	client *redis.Client
	prefix string
}

func NewTokenLedger(client *redis.Client) *TokenLedger {
	return &TokenLedger{client: client, prefix: "auth:used"}
}

// Consume marks jti as used. It returns false when the id was already used.
func (l *TokenLedger) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := l.client.SetNX(ctx, l.prefix+":"+jti, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("consume token: %w", err)
	}
	return ok, nil
}

// Release forgets jti so the token can be used again.
func (l *TokenLedger) Release(ctx context.Context, jti string) error {
	if err := l.client.Del(ctx, l.prefix+":"+jti).Err(); err != nil {
		return fmt.Errorf("release token: %w", err)
	}
	return nil
}
