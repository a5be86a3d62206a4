package service

import (
	"context"
	"encoding/json"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/ports"
	"puzzle-rewards/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func taskCacheKey(id string) string {
	return "task:" + id
}

func taskGenKey(id string) string {
	return "task-gen:" + id
}

// viewCache stores redacted task views. Every failure is logged and treated
// as a miss.
//
// Each entry is tagged with the task's generation token as read before the
// database fetch. invalidate rotates the token, so a view written by a reader
// that raced a committed mutation no longer matches and is never served.
type viewCache struct {
	cache ports.Cache
	ttl   time.Duration
	log   *zap.Logger
}

type cachedView struct {
	Gen  string            `json:"gen"`
	View entities.TaskView `json:"view"`
}

// generation returns the current token for id. ok is false when the cache
// cannot be consulted, in which case the caller must not cache.
func (c viewCache) generation(ctx context.Context, id string) (string, bool) {
	raw, _, err := c.cache.Get(ctx, taskGenKey(id))
	if err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		c.log.Warn("cache: generation read failed", zap.String("task_id", id), zap.Error(err))
		return "", false
	}
	return string(raw), true
}

func (c viewCache) get(ctx context.Context, id, gen string, now time.Time) (*entities.TaskView, bool) {
	raw, ok, err := c.cache.Get(ctx, taskCacheKey(id))
	if err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		c.log.Warn("cache: get failed", zap.String("task_id", id), zap.Error(err))
		return nil, false
	}
	if !ok {
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	var entry cachedView
	if err := json.Unmarshal(raw, &entry); err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		c.log.Warn("cache: corrupt entry", zap.String("task_id", id), zap.Error(err))
		return nil, false
	}
	if entry.Gen != gen {
		metrics.CacheRequestsTotal.WithLabelValues("stale").Inc()
		return nil, false
	}
	metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	freshen(&entry.View, now)
	return &entry.View, true
}

func (c viewCache) set(ctx context.Context, v *entities.TaskView, gen string) {
	raw, err := json.Marshal(cachedView{Gen: gen, View: *v})
	if err != nil {
		c.log.Warn("cache: encode failed", zap.String("task_id", v.ID), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, taskCacheKey(v.ID), raw, c.ttl); err != nil {
		c.log.Warn("cache: set failed", zap.String("task_id", v.ID), zap.Error(err))
	}
}

// invalidate rotates the generation before dropping the view. The token
// outlives any view tagged with the previous one.
func (c viewCache) invalidate(ctx context.Context, ids ...string) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := c.cache.Set(ctx, taskGenKey(id), []byte(uuid.NewString()), 2*c.ttl); err != nil {
			c.log.Warn("cache: generation bump failed", zap.String("task_id", id), zap.Error(err))
		}
		keys = append(keys, taskCacheKey(id))
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.log.Warn("cache: invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// freshen re-derives the time-dependent fields of a cached view.
func freshen(v *entities.TaskView, now time.Time) {
	if v.Status != entities.TaskStatusBlocked && v.ExpiresAt != nil && now.After(*v.ExpiresAt) {
		v.Status = entities.TaskStatusExpired
	}
	if v.IsFeatured && (v.FeaturedUntil == nil || !now.Before(*v.FeaturedUntil)) {
		v.IsFeatured = false
	}
}
