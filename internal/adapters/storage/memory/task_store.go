package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/PabloGalante/productibot/internal/domain"
)

// TaskStore is a simple in-memory implementation of domain.TaskStore.
// It is NOT persistent; tasks live as long as the process.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []*domain.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

// Add stores the task with id = current size + 1. Tasks are never removed,
// so ids stay unique and increasing.
func (s *TaskStore) Add(task *domain.Task) error {
	if task == nil {
		return errors.New("task is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = len(s.tasks) + 1
	if task.Status == "" {
		task.Status = domain.TaskPending
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Complete moves the task at index from pending to completed.
// Completing an already completed task is a no-op.
func (s *TaskStore) Complete(index int) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.tasks) {
		return nil, fmt.Errorf("index %d: %w", index, domain.ErrTaskNotFound)
	}

	t := s.tasks[index]
	if t.Status == domain.TaskPending {
		t.Status = domain.TaskCompleted
	}
	cp := *t
	return &cp, nil
}

// List returns copies of the stored tasks in creation order.
func (s *TaskStore) List() []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		cp := *t
		out = append(out, &cp)
	}
	return out
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tasks)
}
