package prefs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront/internal/currency"
	"storefront/pkg/sentinel"
)

const prefsKeyPrefix = "sf:prefs:"

// RedisStore persists preferences in Redis so kiosk devices keep their
// selection across restarts and re-imaging.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, deviceID string) (Preferences, error) {
	vals, err := s.client.HGetAll(ctx, prefsKeyPrefix+deviceID).Result()
	if err != nil {
		return Defaults(), fmt.Errorf("load preferences: %w", sentinel.ErrUnavailable)
	}

	p := Defaults()
	if raw, ok := vals["currency"]; ok {
		if c, err := currency.Parse(raw); err == nil {
			p.Currency = c
		}
	}
	if raw, ok := vals["language"]; ok {
		p.Language = ParseLanguage(raw)
	}
	return p, nil
}

func (s *RedisStore) SetCurrency(ctx context.Context, deviceID string, c currency.Currency) error {
	return s.client.HSet(ctx, prefsKeyPrefix+deviceID, "currency", string(c)).Err()
}

func (s *RedisStore) SetLanguage(ctx context.Context, deviceID string, l Language) error {
	return s.client.HSet(ctx, prefsKeyPrefix+deviceID, "language", string(l)).Err()
}
