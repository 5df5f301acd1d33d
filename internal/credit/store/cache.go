// internal/credit/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"credit-workers/internal/common/logger"
	"credit-workers/internal/common/metrics"
	"credit-workers/internal/models"
)

// CachedStore serves GetCustomer from Redis and delegates everything else.
// Customer rows are immutable once written, so entries only expire by TTL.
// Loan history is never cached: evaluations must see committed loans.
type CachedStore struct {
	Store
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, prefix string, log logger.Logger) *CachedStore {
	return &CachedStore{
		Store:  next,
		redis:  client,
		ttl:    ttl,
		prefix: prefix,
		logger: log.WithFields(map[string]interface{}{"component": "customer-cache"}),
	}
}

func (s *CachedStore) key(customerID int64) string {
	return s.prefix + strconv.FormatInt(customerID, 10)
}

func (s *CachedStore) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	key := s.key(customerID)

	val, err := s.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var c models.Customer
		if jsonErr := json.Unmarshal([]byte(val), &c); jsonErr == nil {
			metrics.CustomerCacheLookups.WithLabelValues("hit").Inc()
			return &c, nil
		}
		s.logger.Warn("discarding malformed cache entry", map[string]interface{}{"key": key})
		metrics.CustomerCacheLookups.WithLabelValues("corrupt").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CustomerCacheLookups.WithLabelValues("miss").Inc()
	default:
		s.logger.Warn("cache read failed, falling back to database", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.CustomerCacheLookups.WithLabelValues("error").Inc()
	}

	c, err := s.Store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	s.put(ctx, c)
	return c, nil
}

// CreateCustomer primes the cache with the new row.
func (s *CachedStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if err := s.Store.CreateCustomer(ctx, c); err != nil {
		return err
	}
	s.put(ctx, c)
	return nil
}

func (s *CachedStore) put(ctx context.Context, c *models.Customer) {
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.key(c.ID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{
			"customerId": c.ID,
			"error":      err.Error(),
		})
	}
}
