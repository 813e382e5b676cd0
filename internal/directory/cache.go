package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/domain"
)

// CachedSource caches employee search responses in Redis. Only the search
// path is cached: status changes and single lookups feed point-in-time
// reports and must always hit the directory.
type CachedSource struct {
	inner  Source
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps a Source with a search cache. A nil redis client
// disables caching entirely.
func NewCachedSource(inner Source, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedSource{inner: inner, client: client, ttl: ttl, logger: logger}
}

// StatusChanges passes through uncached.
func (c *CachedSource) StatusChanges(ctx context.Context, from, to time.Time) ([]domain.StatusChange, error) {
	return c.inner.StatusChanges(ctx, from, to)
}

// EmployeeByID passes through uncached.
func (c *CachedSource) EmployeeByID(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return c.inner.EmployeeByID(ctx, employeeID)
}

// SearchEmployees serves from cache when possible. Cache failures degrade
// to a direct directory call.
func (c *CachedSource) SearchEmployees(ctx context.Context, term string, limit, offset int) ([]domain.Employee, error) {
	if c.client == nil {
		return c.inner.SearchEmployees(ctx, term, limit, offset)
	}

	key := fmt.Sprintf("ess:search:%s:%d:%d", term, limit, offset)
	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var employees []domain.Employee
		if err := json.Unmarshal(cached, &employees); err == nil {
			return employees, nil
		}
		c.logger.Warn("discarding corrupt search cache entry", zap.String("key", key))
	}

	employees, err := c.inner.SearchEmployees(ctx, term, limit, offset)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(employees); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("unable to cache search result", zap.Error(err))
		}
	}
	return employees, nil
}
