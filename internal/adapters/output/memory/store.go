// Package memory is an in-process implementation of the repository and unit
// of work ports. Units of work are serialized and run against a private copy
// of the data that replaces the shared state only on commit.
package memory

import (
	"sync"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/ports"
)

type attemptKey struct {
	taskID string
	userID string
}

type state struct {
	tasks     map[string]entities.Task
	attempts  map[attemptKey]entities.Attempt
	rewards   map[string]entities.Reward
	companies map[string]entities.Company
}

func newState() *state {
	return &state{
		tasks:     map[string]entities.Task{},
		attempts:  map[attemptKey]entities.Attempt{},
		rewards:   map[string]entities.Reward{},
		companies: map[string]entities.Company{},
	}
}

func (s *state) clone() *state {
	c := &state{
		tasks:     make(map[string]entities.Task, len(s.tasks)),
		attempts:  make(map[attemptKey]entities.Attempt, len(s.attempts)),
		rewards:   make(map[string]entities.Reward, len(s.rewards)),
		companies: make(map[string]entities.Company, len(s.companies)),
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, v := range s.attempts {
		c.attempts[k] = v
	}
	for k, v := range s.rewards {
		c.rewards[k] = v
	}
	for k, v := range s.companies {
		c.companies[k] = v
	}
	return c
}

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// PutCompany inserts or replaces a company. Companies are managed outside
// this service, so this is how they get into the store.
func (s *Store) PutCompany(c entities.Company) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.companies[c.ID] = c
}

// Repositories returns repositories that operate directly on committed data.
func (s *Store) Repositories() ports.Repositories {
	return newRepositories(binding{store: s})
}

// binding routes repository calls either to a unit of work's private state
// or to the shared state under the store's locks.
type binding struct {
	store *Store
	tx    *state
}

func (b binding) read(fn func(st *state)) {
	if b.tx != nil {
		fn(b.tx)
		return
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	fn(b.store.data)
}

func (b binding) write(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.txMu.Lock()
	defer b.store.txMu.Unlock()
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.data)
}

func newRepositories(b binding) ports.Repositories {
	return ports.Repositories{
		Tasks:     &taskRepository{b: b},
		Attempts:  &attemptRepository{b: b},
		Rewards:   &rewardRepository{b: b},
		Companies: &companyRepository{b: b},
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
