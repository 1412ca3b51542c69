package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"jtimer/backend/internal/model"
)

var (
	ErrEmptyTask    = errors.New("task text is required")
	ErrTaskNotFound = errors.New("task not found")
)

// TaskService keeps the ordered task list and writes the whole list back on
// every mutation. It never touches the timer.
type TaskService struct {
	store Store

	mu    sync.Mutex
	tasks []model.Task
}

func NewTaskService(ctx context.Context, store Store) *TaskService {
	var tasks []model.Task
	if !loadJSON(ctx, store, model.KeyTasks, &tasks) || tasks == nil {
		tasks = []model.Task{}
	}
	return &TaskService{store: store, tasks: tasks}
}

func (s *TaskService) List() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *TaskService) Stats() model.TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.TaskStats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			stats.Done++
		}
	}
	return stats
}

// Add appends a task. Text is trimmed and cut to MaxTaskTextLength runes.
func (s *TaskService) Add(ctx context.Context, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, ErrEmptyTask
	}
	if runes := []rune(text); len(runes) > model.MaxTaskTextLength {
		text = strings.TrimSpace(string(runes[:model.MaxTaskTextLength]))
	}

	task := model.Task{ID: uuid.NewString(), Text: text}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(s.copyLocked(), task)
	if err := s.commitLocked(ctx, next); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Toggle(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	next := s.copyLocked()
	next[i].Completed = !next[i].Completed
	if err := s.commitLocked(ctx, next); err != nil {
		return model.Task{}, err
	}
	return next[i], nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	next := s.copyLocked()
	next = append(next[:i], next[i+1:]...)
	return s.commitLocked(ctx, next)
}

func (s *TaskService) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskService) copyLocked() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// commitLocked persists next and adopts it only once the write succeeded, so
// memory and storage never disagree.
func (s *TaskService) commitLocked(ctx context.Context, next []model.Task) error {
	if err := saveJSON(ctx, s.store, model.KeyTasks, next); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = next
	return nil
}
