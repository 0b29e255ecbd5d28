// AngelaMos | 2026
// writers.go

package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
)

// KeyStore claims short-lived keys. Claim reports false when the key is
// already held.
type KeyStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisKeys struct {
	client *redis.Client
}

func NewRedisKeys(client *redis.Client) *RedisKeys {
	return &RedisKeys{client: client}
}

func (k *RedisKeys) Claim(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (bool, error) {
	ok, err := k.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (k *RedisKeys) Release(ctx context.Context, key string) error {
	if err := k.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// VoteGuard rejects a second vote by the same voter on the same review for
// ttl, across view sessions and reloads.
type VoteGuard struct {
	keys KeyStore
	next HelpfulWriter
	ttl  time.Duration
}

func NewVoteGuard(keys KeyStore, next HelpfulWriter, ttl time.Duration) *VoteGuard {
	return &VoteGuard{keys: keys, next: next, ttl: ttl}
}

func voteKey(reviewID int64, voterID string) string {
	return "helpful:" + strconv.FormatInt(reviewID, 10) + ":" + voterID
}

func (g *VoteGuard) PostHelpful(
	ctx context.Context,
	voterID string,
	reviewID int64,
) error {
	key := voteKey(reviewID, voterID)

	claimed, err := g.keys.Claim(ctx, key, g.ttl)
	if err != nil {
		return fmt.Errorf("vote guard: %w", err)
	}
	if !claimed {
		return ErrAlreadyVoted
	}

	if err := g.next.PostHelpful(ctx, voterID, reviewID); err != nil {
		if relErr := g.keys.Release(context.WithoutCancel(ctx), key); relErr != nil {
			slog.Warn("vote guard release failed",
				"review_id", reviewID,
				"error", relErr,
			)
		}
		return err
	}

	return nil
}

type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// BreakerWriter stops calling a failing writer for Timeout once
// ConsecutiveFailures writes in a row have failed.
type BreakerWriter struct {
	cb   *gobreaker.CircuitBreaker
	next HelpfulWriter
}

func NewBreakerWriter(next HelpfulWriter, cfg BreakerConfig) *BreakerWriter {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	threshold := cfg.ConsecutiveFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "helpful-writer",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrAlreadyVoted) ||
				errors.Is(err, core.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerWriter{cb: cb, next: next}
}

func (b *BreakerWriter) PostHelpful(
	ctx context.Context,
	voterID string,
	reviewID int64,
) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.PostHelpful(ctx, voterID, reviewID)
	})
	return err
}

func (b *BreakerWriter) State() string {
	return b.cb.State().String()
}
