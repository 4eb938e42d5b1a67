package customer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	"creditline/pkg/platform/circuit"
)

const (
	cacheKeyPrefix       = "creditline:customer:"
	defaultCacheTTL      = 5 * time.Minute
	defaultProbeInterval = 10 * time.Second
)

// Cache lookup outcomes reported to the observer.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheError    = "error"
	CacheBypassed = "bypassed"
)

// Store is the customer store the cache reads through to.
type Store interface {
	Create(ctx context.Context, c *models.Customer) error
	FindByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error)
}

// CacheObserver receives cache lookup outcomes.
type CacheObserver interface {
	ObserveCacheLookup(result string)
}

// CachedStore is a Redis read-through cache in front of a customer store.
// Redis failures never fail a lookup: the breaker opens after repeated errors
// and lookups go straight to the backing store, probing Redis periodically
// until it recovers.
type CachedStore struct {
	next          Store
	client        redis.UniversalClient
	ttl           time.Duration
	breaker       *circuit.Breaker
	probeInterval time.Duration
	logger        *slog.Logger
	observer      CacheObserver

	mu        sync.Mutex
	lastProbe time.Time
	now       func() time.Time
}

type CacheOption func(*CachedStore)

func WithTTL(ttl time.Duration) CacheOption {
	return func(s *CachedStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(s *CachedStore) {
		s.logger = logger
	}
}

func WithCacheObserver(o CacheObserver) CacheOption {
	return func(s *CachedStore) {
		s.observer = o
	}
}

func WithBreaker(b *circuit.Breaker) CacheOption {
	return func(s *CachedStore) {
		s.breaker = b
	}
}

func WithProbeInterval(d time.Duration) CacheOption {
	return func(s *CachedStore) {
		s.probeInterval = d
	}
}

// NewCached wraps next with a Redis cache.
func NewCached(next Store, client redis.UniversalClient, opts ...CacheOption) (*CachedStore, error) {
	if next == nil {
		return nil, errors.New("customer store is required")
	}
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &CachedStore{
		next:          next,
		client:        client,
		ttl:           defaultCacheTTL,
		breaker:       circuit.New("customer-cache", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(1)),
		probeInterval: defaultProbeInterval,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create writes through to the backing store, then primes the cache.
func (s *CachedStore) Create(ctx context.Context, c *models.Customer) error {
	if err := s.next.Create(ctx, c); err != nil {
		return err
	}
	if s.useCache() {
		s.set(ctx, c)
	}
	return nil
}

func (s *CachedStore) FindByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error) {
	if !s.useCache() {
		s.observe(CacheBypassed)
		return s.next.FindByID(ctx, customerID)
	}

	raw, err := s.client.Get(ctx, cacheKey(customerID)).Bytes()
	switch {
	case err == nil:
		s.recordSuccess()
		var entry cachedCustomer
		if jsonErr := json.Unmarshal(raw, &entry); jsonErr == nil {
			s.observe(CacheHit)
			return entry.toModel(), nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable customer cache entry", "customer_id", customerID)
		s.observe(CacheMiss)
	case errors.Is(err, redis.Nil):
		s.recordSuccess()
		s.observe(CacheMiss)
	default:
		s.recordFailure(ctx, err)
		s.observe(CacheError)
	}

	c, err := s.next.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if s.useCache() {
		s.set(ctx, c)
	}
	return c, nil
}

func (s *CachedStore) set(ctx context.Context, c *models.Customer) {
	payload, err := json.Marshal(fromModel(c))
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKey(c.ID), payload, s.ttl).Err(); err != nil {
		s.recordFailure(ctx, err)
		return
	}
	s.recordSuccess()
}

// useCache reports whether Redis should be tried: always while the breaker is
// closed, and at most once per probe interval while it is open.
func (s *CachedStore) useCache() bool {
	if !s.breaker.IsOpen() {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastProbe) < s.probeInterval {
		return false
	}
	s.lastProbe = now
	return true
}

func (s *CachedStore) recordFailure(ctx context.Context, err error) {
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.mu.Lock()
		s.lastProbe = s.now()
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "customer cache circuit opened", "breaker", s.breaker.Name(), "error", err)
	}
}

func (s *CachedStore) recordSuccess() {
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.Info("customer cache circuit closed", "breaker", s.breaker.Name())
	}
}

func (s *CachedStore) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveCacheLookup(result)
	}
}

func cacheKey(customerID id.CustomerID) string {
	return cacheKeyPrefix + strconv.FormatInt(int64(customerID), 10)
}

// cachedCustomer is the Redis wire form. Decimals travel as strings.
type cachedCustomer struct {
	ID            int64           `json:"id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Age           int             `json:"age"`
	PhoneNumber   string          `json:"phone_number"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	ApprovedLimit decimal.Decimal `json:"approved_limit"`
	CurrentDebt   decimal.Decimal `json:"current_debt"`
	CreatedAt     time.Time       `json:"created_at"`
}

func fromModel(c *models.Customer) cachedCustomer {
	return cachedCustomer{
		ID:            int64(c.ID),
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Age:           c.Age,
		PhoneNumber:   c.PhoneNumber,
		MonthlyIncome: c.MonthlyIncome,
		ApprovedLimit: c.ApprovedLimit,
		CurrentDebt:   c.CurrentDebt,
		CreatedAt:     c.CreatedAt,
	}
}

func (e cachedCustomer) toModel() *models.Customer {
	return &models.Customer{
		ID:            id.CustomerID(e.ID),
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		Age:           e.Age,
		PhoneNumber:   e.PhoneNumber,
		MonthlyIncome: e.MonthlyIncome,
		ApprovedLimit: e.ApprovedLimit,
		CurrentDebt:   e.CurrentDebt,
		CreatedAt:     e.CreatedAt,
	}
}
