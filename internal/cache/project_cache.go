package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/metrics"
	"github.com/devfolio/portfolio-api/internal/models"
)

const (
	projectListKey   = "projects:list"
	projectKeyPrefix = "projects:"
	cacheType        = "projects"
)

// ProjectCache keeps the JSON of the public project list and of single
// projects. Any write to a project must call Invalidate.
type ProjectCache struct {
	client  *Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewProjectCache creates a project cache over client. A nil client yields
// a cache that always misses.
func NewProjectCache(client *Client, ttl time.Duration, m *metrics.Metrics) *ProjectCache {
	return &ProjectCache{client: client, ttl: ttl, metrics: m}
}

// Enabled reports whether entries are actually kept.
func (c *ProjectCache) Enabled() bool {
	return c != nil && c.client != nil
}

func projectKey(id int64) string {
	return fmt.Sprintf("%s%d", projectKeyPrefix, id)
}

// GetList returns the cached project list, or false on a miss.
func (c *ProjectCache) GetList(ctx context.Context) ([]*models.Project, bool) {
	var projects []*models.Project
	ok := c.get(ctx, projectListKey, &projects)
	return projects, ok
}

// SetList caches the project list.
func (c *ProjectCache) SetList(ctx context.Context, projects []*models.Project) {
	c.set(ctx, projectListKey, projects)
}

// Get returns a cached project, or false on a miss.
func (c *ProjectCache) Get(ctx context.Context, id int64) (*models.Project, bool) {
	var project models.Project
	if !c.get(ctx, projectKey(id), &project) {
		return nil, false
	}
	return &project, true
}

// Set caches a single project.
func (c *ProjectCache) Set(ctx context.Context, project *models.Project) {
	if project == nil {
		return
	}
	c.set(ctx, projectKey(project.ID), project)
}

// Invalidate drops the list and the given projects.
func (c *ProjectCache) Invalidate(ctx context.Context, ids ...int64) {
	if c == nil {
		return
	}
	keys := []string{projectListKey}
	for _, id := range ids {
		keys = append(keys, projectKey(id))
	}
	_ = c.client.Delete(ctx, keys...)
}

func (c *ProjectCache) get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	data, _ := c.client.Get(ctx, key)
	if data == nil {
		c.metrics.RecordCache(cacheType, false)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		_ = c.client.Delete(ctx, key)
		c.metrics.RecordCache(cacheType, false)
		return false
	}

	c.metrics.RecordCache(cacheType, true)
	return true
}

func (c *ProjectCache) set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl)
}
