package store

import (
	"fmt"

	"tareas-cli/internal/model"
)

// TaskStore is the canonical in-memory collection of tasks for every user.
//
// It is the only writer of task state. It does not validate task content; callers
// (the editor) are responsible for that before committing.
//
// TaskStore is not safe for concurrent use.
type TaskStore struct {
	tasks []model.Task
	index map[string]int

	observers []func()
	mutations []func(Change)
}

type ChangeOp int

const (
	OpAdd ChangeOp = iota
	OpEdit
	OpRemove
)

// Change describes one applied mutation. For OpRemove only Task.ID is set.
type Change struct {
	Op   ChangeOp
	Task model.Task
}

func NewTaskStore(tasks ...model.Task) *TaskStore {
	s := &TaskStore{
		tasks: make([]model.Task, 0, len(tasks)),
		index: map[string]int{},
	}
	for _, t := range tasks {
		if _, dup := s.index[t.ID]; dup {
			continue
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, t)
	}
	return s
}

// OnChange registers fn to run after every mutation that changed the collection.
func (s *TaskStore) OnChange(fn func()) {
	if fn == nil {
		return
	}
	s.observers = append(s.observers, fn)
}

// OnMutation registers fn to run with the task touched by every mutation.
func (s *TaskStore) OnMutation(fn func(Change)) {
	if fn == nil {
		return
	}
	s.mutations = append(s.mutations, fn)
}

func (s *TaskStore) changed(c Change) {
	for _, fn := range s.mutations {
		fn(c)
	}
	for _, fn := range s.observers {
		fn()
	}
}

// Add inserts a new task. The id must not already be present.
func (s *TaskStore) Add(t model.Task) error {
	if _, ok := s.index[t.ID]; ok {
		return fmt.Errorf("add task %s: %w", t.ID, ErrDuplicateID)
	}
	s.index[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	s.changed(Change{Op: OpAdd, Task: t})
	return nil
}

// Edit replaces the record with the same id.
func (s *TaskStore) Edit(t model.Task) error {
	i, ok := s.index[t.ID]
	if !ok {
		return errNotFound("task", t.ID)
	}
	s.tasks[i] = t
	s.changed(Change{Op: OpEdit, Task: t})
	return nil
}

// Remove deletes the task with id. Removing an unknown id is a no-op; the return
// value reports whether anything was removed.
func (s *TaskStore) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.tasks); j++ {
		s.index[s.tasks[j].ID] = j
	}
	s.changed(Change{Op: OpRemove, Task: model.Task{ID: id}})
	return true
}

func (s *TaskStore) Get(id string) (model.Task, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// GetAll returns a copy of every task in insertion order.
func (s *TaskStore) GetAll() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *TaskStore) Len() int { return len(s.tasks) }

// ToggleComplete flips completada on one task and leaves every other field as is.
func (s *TaskStore) ToggleComplete(id string) (model.Task, error) {
	t, ok := s.Get(id)
	if !ok {
		return model.Task{}, errNotFound("task", id)
	}
	t.Completada = !t.Completada
	if err := s.Edit(t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}
