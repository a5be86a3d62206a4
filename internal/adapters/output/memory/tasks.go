package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
)

type taskRepository struct {
	b binding
}

func cloneTask(t entities.Task) *entities.Task {
	t.FeaturedUntil = copyTime(t.FeaturedUntil)
	t.ExpiresAt = copyTime(t.ExpiresAt)
	return &t
}

func (r *taskRepository) GetByID(_ context.Context, id string) (*entities.Task, error) {
	var (
		task *entities.Task
		ok   bool
	)
	r.b.read(func(st *state) {
		var t entities.Task
		if t, ok = st.tasks[id]; ok {
			task = cloneTask(t)
		}
	})
	if !ok {
		return nil, exceptions.NotFound(exceptions.ResourceTask, id)
	}
	return task, nil
}

func (r *taskRepository) GetForUpdate(ctx context.Context, id string) (*entities.Task, error) {
	return r.GetByID(ctx, id)
}

func titleTaken(st *state, companyID, title, excludeID string) bool {
	for _, t := range st.tasks {
		if t.ID != excludeID && t.CompanyID == companyID && strings.EqualFold(t.Title, title) {
			return true
		}
	}
	return false
}

func (r *taskRepository) ExistsTitle(_ context.Context, companyID, title, excludeID string) (bool, error) {
	var exists bool
	r.b.read(func(st *state) {
		exists = titleTaken(st, companyID, title, excludeID)
	})
	return exists, nil
}

func (r *taskRepository) Create(_ context.Context, task *entities.Task) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.tasks[task.ID]; ok {
			return exceptions.Conflict(exceptions.ResourceTask, task.ID, "task already exists")
		}
		if titleTaken(st, task.CompanyID, task.Title, task.ID) {
			return exceptions.Conflict(exceptions.ResourceTask, task.ID, "title %q already used by this company", task.Title)
		}
		st.tasks[task.ID] = *cloneTask(*task)
		return nil
	})
}

func (r *taskRepository) Update(_ context.Context, task *entities.Task) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.tasks[task.ID]; !ok {
			return exceptions.NotFound(exceptions.ResourceTask, task.ID)
		}
		if titleTaken(st, task.CompanyID, task.Title, task.ID) {
			return exceptions.Conflict(exceptions.ResourceTask, task.ID, "title %q already used by this company", task.Title)
		}
		st.tasks[task.ID] = *cloneTask(*task)
		return nil
	})
}

func (r *taskRepository) TransitionStatus(_ context.Context, id string, from, to entities.TaskStatus, updatedAt time.Time) (bool, error) {
	var moved bool
	err := r.b.write(func(st *state) error {
		t, ok := st.tasks[id]
		if !ok {
			return exceptions.NotFound(exceptions.ResourceTask, id)
		}
		if t.Status != from {
			return nil
		}
		t.Status = to
		t.UpdatedAt = updatedAt
		st.tasks[id] = t
		moved = true
		return nil
	})
	return moved, err
}

func (r *taskRepository) SetFeatured(_ context.Context, id string, until time.Time, updatedAt time.Time) (bool, error) {
	var updated bool
	err := r.b.write(func(st *state) error {
		t, ok := st.tasks[id]
		if !ok {
			return exceptions.NotFound(exceptions.ResourceTask, id)
		}
		if t.Status != entities.TaskStatusActive {
			return nil
		}
		t.IsFeatured = true
		t.FeaturedUntil = &until
		t.UpdatedAt = updatedAt
		st.tasks[id] = t
		updated = true
		return nil
	})
	return updated, err
}

func (r *taskRepository) IncrementCounters(_ context.Context, id string, successful bool) error {
	return r.b.write(func(st *state) error {
		t, ok := st.tasks[id]
		if !ok {
			return exceptions.NotFound(exceptions.ResourceTask, id)
		}
		t.AttemptCount++
		if successful {
			t.ConversionCount++
		}
		st.tasks[id] = t
		return nil
	})
}

func (r *taskRepository) Delete(_ context.Context, id string) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.tasks[id]; !ok {
			return exceptions.NotFound(exceptions.ResourceTask, id)
		}
		delete(st.tasks, id)
		return nil
	})
}

func (r *taskRepository) List(_ context.Context, filter entities.TaskFilter, now time.Time) ([]*entities.Task, int, error) {
	filter = filter.Normalize()
	var matched []*entities.Task
	r.b.read(func(st *state) {
		for _, t := range st.tasks {
			if matches(st, &t, filter, now) {
				matched = append(matched, cloneTask(t))
			}
		}
	})

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], filter)
	})

	total := len(matched)
	start := filter.Offset()
	if start >= total {
		return []*entities.Task{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matches(st *state, t *entities.Task, f entities.TaskFilter, now time.Time) bool {
	if t.EffectiveStatus(now) != f.Status {
		return false
	}
	if f.Difficulty != "" && t.Difficulty != f.Difficulty {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CompanyID != "" && t.CompanyID != f.CompanyID {
		return false
	}
	if f.FeaturedOnly && !t.FeaturedAt(now) {
		return false
	}
	if f.City != "" {
		c, ok := st.companies[t.CompanyID]
		if !ok || !strings.EqualFold(c.City, f.City) {
			return false
		}
	}
	return true
}

func less(a, b *entities.Task, f entities.TaskFilter) bool {
	var cmp int
	switch f.SortBy {
	case entities.SortRewardValue:
		cmp = a.RewardValue.Cmp(b.RewardValue)
	case entities.SortAttemptCount:
		cmp = compareInt(a.AttemptCount, b.AttemptCount)
	case entities.SortTitle:
		cmp = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case entities.SortFeaturedUntil:
		// Tasks never featured sort last in both directions.
		switch {
		case a.FeaturedUntil == nil && b.FeaturedUntil == nil:
		case a.FeaturedUntil == nil:
			return false
		case b.FeaturedUntil == nil:
			return true
		default:
			cmp = a.FeaturedUntil.Compare(*b.FeaturedUntil)
		}
	default:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	}
	if cmp == 0 {
		return a.ID < b.ID
	}
	if f.Descending {
		return cmp > 0
	}
	return cmp < 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
