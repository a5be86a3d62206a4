package memory

import (
	"context"
	"sort"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
)

type rewardRepository struct {
	b binding
}

func cloneReward(rw entities.Reward) *entities.Reward {
	rw.RedeemedAt = copyTime(rw.RedeemedAt)
	return &rw
}

func (r *rewardRepository) Exists(_ context.Context, userID, taskID string) (bool, error) {
	var exists bool
	r.b.read(func(st *state) {
		for _, rw := range st.rewards {
			if rw.UserID == userID && rw.TaskID == taskID {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

func (r *rewardRepository) Create(_ context.Context, reward *entities.Reward) (bool, error) {
	var created bool
	err := r.b.write(func(st *state) error {
		for _, rw := range st.rewards {
			if rw.Code == reward.Code {
				return nil
			}
			if rw.UserID == reward.UserID && rw.TaskID == reward.TaskID {
				return exceptions.Conflict(exceptions.ResourceReward, reward.TaskID, "user %s already holds a reward for this task", reward.UserID)
			}
		}
		st.rewards[reward.ID] = *cloneReward(*reward)
		created = true
		return nil
	})
	return created, err
}

func (r *rewardRepository) GetByCode(_ context.Context, userID, code string) (*entities.Reward, error) {
	var found *entities.Reward
	r.b.read(func(st *state) {
		for _, rw := range st.rewards {
			if rw.Code == code && rw.UserID == userID {
				found = cloneReward(rw)
				return
			}
		}
	})
	if found == nil {
		return nil, exceptions.NotFound(exceptions.ResourceReward, code)
	}
	return found, nil
}

func (r *rewardRepository) MarkRedeemed(_ context.Context, id string, redeemedAt time.Time) (bool, error) {
	var marked bool
	err := r.b.write(func(st *state) error {
		rw, ok := st.rewards[id]
		if !ok {
			return exceptions.NotFound(exceptions.ResourceReward, id)
		}
		if rw.IsRedeemed {
			return nil
		}
		rw.IsRedeemed = true
		rw.RedeemedAt = &redeemedAt
		st.rewards[id] = rw
		marked = true
		return nil
	})
	return marked, err
}

func (r *rewardRepository) ListByUser(_ context.Context, userID string) ([]*entities.Reward, error) {
	out := []*entities.Reward{}
	r.b.read(func(st *state) {
		for _, rw := range st.rewards {
			if rw.UserID == userID {
				out = append(out, cloneReward(rw))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *rewardRepository) DeleteByTask(_ context.Context, taskID string) (int, error) {
	var n int
	err := r.b.write(func(st *state) error {
		for id, rw := range st.rewards {
			if rw.TaskID == taskID {
				delete(st.rewards, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
