package entities

import "strings"

type SortField string

const (
	SortCreatedAt     SortField = "created_at"
	SortRewardValue   SortField = "reward_value"
	SortAttemptCount  SortField = "attempt_count"
	SortFeaturedUntil SortField = "featured_until"
	SortTitle         SortField = "title"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// sortable is the whitelist of list ordering keys. Anything else falls back
// to created_at.
var sortable = map[SortField]bool{
	SortCreatedAt:     true,
	SortRewardValue:   true,
	SortAttemptCount:  true,
	SortFeaturedUntil: true,
	SortTitle:         true,
}

type TaskFilter struct {
	Status       TaskStatus
	Difficulty   Difficulty
	Type         TaskType
	City         string
	CompanyID    string
	FeaturedOnly bool
	Page         int
	Limit        int
	SortBy       SortField
	Descending   bool
}

// Normalize applies defaults and drops unknown sort keys and enum values.
// Draft and blocked tasks are only listed within a single company.
func (f TaskFilter) Normalize() TaskFilter {
	f.CompanyID = strings.TrimSpace(f.CompanyID)
	if !f.Status.Valid() {
		f.Status = TaskStatusActive
	}
	if f.CompanyID == "" && (f.Status == TaskStatusDraft || f.Status == TaskStatusBlocked) {
		f.Status = TaskStatusActive
	}
	if f.Difficulty != "" && !f.Difficulty.Valid() {
		f.Difficulty = ""
	}
	if f.Type != "" && !f.Type.Valid() {
		f.Type = ""
	}
	f.City = strings.TrimSpace(f.City)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if !sortable[f.SortBy] {
		f.SortBy = SortCreatedAt
		f.Descending = true
	}
	return f
}

func (f TaskFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type TaskPage struct {
	Tasks []TaskView `json:"tasks"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}
