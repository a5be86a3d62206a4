package postgres

import (
	"fmt"
	"strings"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
)

// sortColumns maps whitelisted sort keys to SQL. Only these strings ever
// reach ORDER BY.
var sortColumns = map[entities.SortField]string{
	entities.SortCreatedAt:     "t.created_at",
	entities.SortRewardValue:   "t.reward_value",
	entities.SortAttemptCount:  "t.attempt_count",
	entities.SortFeaturedUntil: "t.featured_until",
	entities.SortTitle:         "lower(t.title)",
}

type listQuery struct {
	count    string
	page     string
	args     []any
	pageArgs []any
}

func buildListQuery(filter entities.TaskFilter, now time.Time) listQuery {
	filter = filter.Normalize()

	var (
		where []string
		args  []any
		join  string
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch filter.Status {
	case entities.TaskStatusExpired:
		where = append(where, "t.status <> 'blocked'", "t.expires_at IS NOT NULL", "t.expires_at < "+arg(now))
	case entities.TaskStatusBlocked:
		where = append(where, "t.status = 'blocked'")
	default:
		where = append(where, "t.status = "+arg(filter.Status), "(t.expires_at IS NULL OR t.expires_at >= "+arg(now)+")")
	}
	if filter.Difficulty != "" {
		where = append(where, "t.difficulty = "+arg(filter.Difficulty))
	}
	if filter.Type != "" {
		where = append(where, "t.task_type = "+arg(filter.Type))
	}
	if filter.CompanyID != "" {
		where = append(where, "t.company_id = "+arg(filter.CompanyID))
	}
	if filter.FeaturedOnly {
		where = append(where, "t.is_featured", "t.featured_until > "+arg(now))
	}
	if filter.City != "" {
		join = " JOIN companies c ON c.id = t.company_id"
		where = append(where, "lower(c.city) = lower("+arg(filter.City)+")")
	}

	from := " FROM tasks t" + join + " WHERE " + strings.Join(where, " AND ")

	dir := "ASC"
	if filter.Descending {
		dir = "DESC"
	}
	order := sortColumns[filter.SortBy] + " " + dir
	if filter.SortBy == entities.SortFeaturedUntil {
		order += " NULLS LAST"
	}

	pageArgs := append(append([]any(nil), args...), filter.Limit, filter.Offset())
	page := "SELECT " + taskColumns + from +
		" ORDER BY " + order + ", t.id ASC" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	return listQuery{
		count:    "SELECT COUNT(*)" + from,
		page:     page,
		args:     args,
		pageArgs: pageArgs,
	}
}
