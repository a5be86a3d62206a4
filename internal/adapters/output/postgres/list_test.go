package postgres

import (
	"strings"
	"testing"
	"time"

	"puzzle-rewards/internal/core/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQueryDefaults(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := buildListQuery(entities.TaskFilter{}, now)

	assert.Contains(t, q.page, "t.status = $1")
	assert.Contains(t, q.page, "t.expires_at >= $2")
	assert.Contains(t, q.page, "ORDER BY t.created_at DESC, t.id ASC")
	assert.Contains(t, q.page, "LIMIT $3 OFFSET $4")
	assert.Equal(t, []any{entities.TaskStatusActive, now}, q.args)
	assert.Equal(t, []any{entities.TaskStatusActive, now, entities.DefaultPageLimit, 0}, q.pageArgs)
	assert.NotContains(t, q.count, "ORDER BY")
}

func TestBuildListQueryIgnoresUnknownSort(t *testing.T) {
	q := buildListQuery(entities.TaskFilter{SortBy: "title; DROP TABLE tasks"}, time.Now())
	assert.NotContains(t, q.page, "DROP")
	assert.Contains(t, q.page, "ORDER BY t.created_at DESC")
}

func TestBuildListQueryFilters(t *testing.T) {
	now := time.Now()
	q := buildListQuery(entities.TaskFilter{
		Difficulty:   entities.DifficultyHard,
		Type:         entities.TaskTypeMeme,
		City:         " Almaty ",
		CompanyID:    "c1",
		FeaturedOnly: true,
		Page:         3,
		Limit:        10,
		SortBy:       entities.SortFeaturedUntil,
	}, now)

	assert.Contains(t, q.page, "JOIN companies c ON c.id = t.company_id")
	assert.Contains(t, q.count, "JOIN companies c")
	assert.Contains(t, q.page, "lower(c.city) = lower($")
	assert.Contains(t, q.page, "t.featured_until ASC NULLS LAST")
	assert.Equal(t, "Almaty", q.args[len(q.args)-1])
	assert.Equal(t, 10, q.pageArgs[len(q.pageArgs)-2])
	assert.Equal(t, 20, q.pageArgs[len(q.pageArgs)-1])
	assert.Equal(t, len(q.args), strings.Count(q.count, "$"))
}

func TestBuildListQueryExpired(t *testing.T) {
	q := buildListQuery(entities.TaskFilter{Status: entities.TaskStatusExpired}, time.Now())
	assert.Contains(t, q.page, "t.status <> 'blocked'")
	assert.Contains(t, q.page, "t.expires_at < $1")
	assert.Len(t, q.args, 1)
}
