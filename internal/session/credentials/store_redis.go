package credentials

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/nacl/secretbox"

	"storefront/pkg/sentinel"
)

const credentialKeyPrefix = "sf:cred:"

// RedisStore persists credentials in Redis for kiosk fleets where devices
// share a backend. Tokens are sealed with secretbox before they leave the
// process; the key never reaches Redis.
type RedisStore struct {
	client *redis.Client
	key    [32]byte
}

// NewRedisStore builds a Redis-backed credential store. hexKey must decode
// to exactly 32 bytes.
func NewRedisStore(client *redis.Client, hexKey string) (*RedisStore, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode credential key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("credential key must be 32 bytes, got %d", len(raw))
	}
	s := &RedisStore{client: client}
	copy(s.key[:], raw)
	return s, nil
}

func (s *RedisStore) Save(ctx context.Context, deviceID string, cred Credential) error {
	plain, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	return s.client.Set(ctx, credentialKeyPrefix+deviceID, sealed, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context, deviceID string) (Credential, error) {
	sealed, err := s.client.Get(ctx, credentialKeyPrefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Credential{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("load credential: %w", sentinel.ErrUnavailable)
	}
	if len(sealed) < 24 {
		return Credential{}, fmt.Errorf("credential blob too short: %w", sentinel.ErrNotFound)
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &s.key)
	if !ok {
		// Wrong key or corrupted blob; treat as absent so the session
		// resolves to anonymous instead of failing startup.
		return Credential{}, fmt.Errorf("credential unsealing failed: %w", sentinel.ErrNotFound)
	}

	var cred Credential
	if err := json.Unmarshal(plain, &cred); err != nil {
		return Credential{}, fmt.Errorf("decode credential: %w", sentinel.ErrNotFound)
	}
	return cred, nil
}

func (s *RedisStore) Delete(ctx context.Context, deviceID string) error {
	return s.client.Del(ctx, credentialKeyPrefix+deviceID).Err()
}
