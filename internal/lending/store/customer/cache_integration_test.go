//go:build integration

package customer_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"creditline/internal/lending/models"
	"creditline/internal/lending/store/customer"
	"creditline/pkg/testutil/containers"
)

type lookupCounter struct{ hits, misses int }

func (c *lookupCounter) ObserveCacheLookup(result string) {
	switch result {
	case customer.CacheHit:
		c.hits++
	case customer.CacheMiss:
		c.misses++
	}
}

type CachedStoreSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backing *customer.InMemory
	counter *lookupCounter
	store   *customer.CachedStore
}

func TestCachedStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CachedStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backing = customer.NewInMemory()
	s.counter = &lookupCounter{}
	store, err := customer.NewCached(s.backing, s.redis.Client,
		customer.WithTTL(time.Minute),
		customer.WithCacheObserver(s.counter))
	s.Require().NoError(err)
	s.store = store
}

func (s *CachedStoreSuite) TestCreatePrimesCache() {
	ctx := context.Background()
	c, err := models.NewCustomer("Ada", "Lovelace", 36, "9876543210", decimal.RequireFromString("50000.50"), time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(1, s.counter.hits)
	s.True(c.MonthlyIncome.Equal(found.MonthlyIncome))
	s.True(c.ApprovedLimit.Equal(found.ApprovedLimit))

	ttl, err := s.redis.Client.TTL(ctx, "creditline:customer:1").Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *CachedStoreSuite) TestMissReadsThrough() {
	ctx := context.Background()
	c, err := models.NewCustomer("Grace", "Hopper", 40, "9876543210", decimal.NewFromInt(60000), time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.backing.Create(ctx, c))

	_, err = s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	_, err = s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)

	s.Equal(1, s.counter.misses)
	s.Equal(1, s.counter.hits)
}
