package memory

import (
	"context"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
)

type attemptRepository struct {
	b binding
}

func (r *attemptRepository) Exists(_ context.Context, taskID, userID string) (bool, error) {
	var ok bool
	r.b.read(func(st *state) {
		_, ok = st.attempts[attemptKey{taskID: taskID, userID: userID}]
	})
	return ok, nil
}

func (r *attemptRepository) Create(_ context.Context, attempt *entities.Attempt) error {
	return r.b.write(func(st *state) error {
		key := attemptKey{taskID: attempt.TaskID, userID: attempt.UserID}
		if _, ok := st.attempts[key]; ok {
			return exceptions.Conflict(exceptions.ResourceAttempt, attempt.TaskID, "user %s already attempted this task", attempt.UserID)
		}
		st.attempts[key] = *attempt
		return nil
	})
}

func (r *attemptRepository) Get(_ context.Context, taskID, userID string) (*entities.Attempt, error) {
	var (
		a  entities.Attempt
		ok bool
	)
	r.b.read(func(st *state) {
		a, ok = st.attempts[attemptKey{taskID: taskID, userID: userID}]
	})
	if !ok {
		return nil, exceptions.NotFound(exceptions.ResourceAttempt, taskID+"/"+userID)
	}
	return &a, nil
}

func (r *attemptRepository) DeleteByTask(_ context.Context, taskID string) (int, error) {
	var n int
	err := r.b.write(func(st *state) error {
		for k := range st.attempts {
			if k.taskID == taskID {
				delete(st.attempts, k)
				n++
			}
		}
		return nil
	})
	return n, err
}
