package services

import (
	"context"
	"sync"
	"time"

	"jira-merge-gate/models"
)

type cachedDetails struct {
	details   *models.JiraDetails
	fetchedAt time.Time
}

// CachingJiraService wraps a JiraService and remembers ticket details for a while,
// so a key mentioned several times is fetched once
type CachingJiraService struct {
	JiraService

	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*cachedDetails
}

// NewCachingJiraService creates a caching wrapper. A ttl of zero disables caching.
func NewCachingJiraService(inner JiraService, ttl time.Duration) *CachingJiraService {
	return &CachingJiraService{
		JiraService: inner,
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[string]*cachedDetails),
	}
}

// GetTicketDetails returns cached details when fresh, otherwise fetches and caches them.
// Errors are never cached.
func (c *CachingJiraService) GetTicketDetails(ctx context.Context, key string) (*models.JiraDetails, error) {
	if c.ttl <= 0 {
		return c.JiraService.GetTicketDetails(ctx, key)
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.details, nil
	}

	details, err := c.JiraService.GetTicketDetails(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &cachedDetails{
		details:   details,
		fetchedAt: c.now(),
	}
	c.mu.Unlock()

	return details, nil
}
