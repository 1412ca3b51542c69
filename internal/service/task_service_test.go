package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"jtimer/backend/internal/model"
)

func storedTasks(t *testing.T, store *memStore) []model.Task {
	t.Helper()
	raw, ok := store.value(model.KeyTasks)
	if !ok {
		t.Fatal("expected tasks to be stored")
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		t.Fatalf("decode stored tasks: %v", err)
	}
	return tasks
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(nil)
	svc := NewTaskService(ctx, store)

	if got := svc.List(); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}

	a, err := svc.Add(ctx, "write report")
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	b, err := svc.Add(ctx, "  email Bob  ")
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if b.Text != "email Bob" {
		t.Fatalf("expected trimmed text, got %q", b.Text)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
	if stats := svc.Stats(); stats != (model.TaskStats{Done: 0, Total: 2}) {
		t.Fatalf("unexpected stats %+v", stats)
	}

	toggled, err := svc.Toggle(ctx, a.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatal("expected task to be completed")
	}
	if stats := svc.Stats(); stats != (model.TaskStats{Done: 1, Total: 2}) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	stored := storedTasks(t, store)
	if len(stored) != 2 || !stored[0].Completed || stored[1].Completed {
		t.Fatalf("stored tasks out of sync: %+v", stored)
	}

	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if stats := svc.Stats(); stats != (model.TaskStats{Done: 1, Total: 1}) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	stored = storedTasks(t, store)
	if len(stored) != 1 || stored[0].ID != a.ID {
		t.Fatalf("stored tasks out of sync: %+v", stored)
	}

	if _, err := svc.Toggle(ctx, a.ID); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if svc.List()[0].Completed {
		t.Fatal("toggle must flip the flag back")
	}
}

func TestTaskOrderSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(nil)
	svc := NewTaskService(ctx, store)

	for _, text := range []string{"one", "two", "three"} {
		if _, err := svc.Add(ctx, text); err != nil {
			t.Fatalf("add %s: %v", text, err)
		}
	}

	reloaded := NewTaskService(ctx, store).List()
	if len(reloaded) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(reloaded))
	}
	for i, want := range []string{"one", "two", "three"} {
		if reloaded[i].Text != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, reloaded[i].Text)
		}
	}
}

func TestAddRejectsEmptyText(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(nil)
	svc := NewTaskService(ctx, store)

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Add(ctx, text); !errors.Is(err, ErrEmptyTask) {
			t.Fatalf("text %q: expected ErrEmptyTask, got %v", text, err)
		}
	}
	if _, ok := store.value(model.KeyTasks); ok {
		t.Fatal("rejected adds must not write")
	}
}

func TestAddTruncatesLongText(t *testing.T) {
	svc := NewTaskService(context.Background(), newMemStore(nil))

	task, err := svc.Add(context.Background(), strings.Repeat("é", 80))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if n := len([]rune(task.Text)); n != model.MaxTaskTextLength {
		t.Fatalf("expected %d runes, got %d", model.MaxTaskTextLength, n)
	}
}

func TestUnknownTaskID(t *testing.T) {
	svc := NewTaskService(context.Background(), newMemStore(nil))

	if _, err := svc.Toggle(context.Background(), "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestFailedSaveLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(nil)
	svc := NewTaskService(ctx, store)

	if _, err := svc.Add(ctx, "keep me"); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.failOn = model.KeyTasks

	if _, err := svc.Add(ctx, "lost"); err == nil {
		t.Fatal("expected save error")
	}
	if got := svc.List(); len(got) != 1 || got[0].Text != "keep me" {
		t.Fatalf("list changed despite failed save: %+v", got)
	}
}

func TestCorruptStoredTasksStartEmpty(t *testing.T) {
	svc := NewTaskService(context.Background(), newMemStore(map[string]string{model.KeyTasks: "{not json"}))
	if got := svc.List(); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}
