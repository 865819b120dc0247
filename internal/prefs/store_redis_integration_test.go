//go:build integration

package prefs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"storefront/internal/currency"
	"storefront/internal/prefs"
	"storefront/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *prefs.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = prefs.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestDefaultsForUnknownDevice() {
	p, err := s.store.Load(context.Background(), "fresh-device")
	s.Require().NoError(err)
	s.Equal(prefs.Defaults(), p)
}

func (s *RedisStoreSuite) TestCurrencyPersists() {
	ctx := context.Background()
	s.Require().NoError(s.store.SetCurrency(ctx, "device-1", currency.EUR))

	p, err := s.store.Load(ctx, "device-1")
	s.Require().NoError(err)
	s.Equal(currency.EUR, p.Currency)
	s.Equal(prefs.LangEN, p.Language, "language stays at its default")
}

func (s *RedisStoreSuite) TestLanguagePersists() {
	ctx := context.Background()
	s.Require().NoError(s.store.SetLanguage(ctx, "device-1", prefs.LangAR))

	p, err := s.store.Load(ctx, "device-1")
	s.Require().NoError(err)
	s.Equal(prefs.LangAR, p.Language)
	s.Equal(currency.USD, p.Currency, "currency stays at its default")
}

func (s *RedisStoreSuite) TestInvalidStoredValuesFallBack() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.HSet(ctx, "sf:prefs:device-1",
		"currency", "DOGE", "language", "klingon").Err())

	p, err := s.store.Load(ctx, "device-1")
	s.Require().NoError(err)
	s.Equal(prefs.Defaults(), p)
}

func (s *RedisStoreSuite) TestDevicesAreIsolated() {
	ctx := context.Background()
	s.Require().NoError(s.store.SetCurrency(ctx, "device-1", currency.RUB))

	p, err := s.store.Load(ctx, "device-2")
	s.Require().NoError(err)
	s.Equal(currency.USD, p.Currency)
}
