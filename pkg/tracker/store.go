// Package tracker holds the in-memory task store and the operations that
// mutate and query it. All reads and writes go through a Store; callers
// only ever receive copies of its tasks.
package tracker

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SearchMode selects the field Search matches against.
type SearchMode string

const (
	BySubject SearchMode = "subject"
	ByStatus  SearchMode = "status"
	ByLabel   SearchMode = "label"
)

func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case BySubject, ByStatus, ByLabel:
		return SearchMode(s), nil
	}
	return "", fmt.Errorf("%w %q (want status/subject/label)", ErrUnknownSearchMode, s)
}

// Store owns the task collection. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	tasks  []Task
	lastID int
	now    func() time.Time
}

type Option func(*Store)

// WithClock sets the clock used for start and finish timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add creates a Todo task. Ids come from a counter and are never reused,
// even after the task holding one is removed.
func (s *Store) Add(subject string, deadline time.Time) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	t := Task{
		ID:       s.lastID,
		UUID:     uuid.Must(uuid.NewV7()).String(),
		Subject:  subject,
		Deadline: deadline,
		Status:   Todo,
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Remove deletes the task with the given id and reports whether it existed.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true
}

func (s *Store) Get(id int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	return s.tasks[i], nil
}

// List returns every task in creation order.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// AddLabel puts label on the task. Adding a label it already has is a no-op.
func (s *Store) AddLabel(id int, label Label) (Task, error) {
	return s.update(id, func(t *Task) {
		t.Labels = t.Labels.With(label)
	})
}

// RemoveLabel takes label off the task. Removing an absent label is a no-op.
func (s *Store) RemoveLabel(id int, label Label) (Task, error) {
	return s.update(id, func(t *Task) {
		t.Labels = t.Labels.Without(label)
	})
}

// ChangeStatus moves the task to status. Any status may follow any other.
// Moving to Doing stamps StartTime and clears FinishTime, moving to Done
// stamps FinishTime, and moving to Todo clears both. Setting the current
// status again leaves the task untouched.
func (s *Store) ChangeStatus(id int, status Status) (Task, error) {
	return s.update(id, func(t *Task) {
		if t.Status == status {
			return
		}
		switch status {
		case Doing:
			t.StartTime = s.now()
			t.FinishTime = time.Time{}
		case Done:
			t.FinishTime = s.now()
		case Todo:
			t.StartTime = time.Time{}
			t.FinishTime = time.Time{}
		}
		t.Status = status
	})
}

// Search returns the tasks matching query in creation order. Subject
// matching is a case-insensitive substring test; status and label
// matching are exact.
func (s *Store) Search(mode SearchMode, query string) ([]Task, error) {
	var match func(Task) bool
	switch mode {
	case ByStatus:
		match = func(t Task) bool { return string(t.Status) == query }
	case BySubject:
		q := strings.ToLower(query)
		match = func(t Task) bool { return strings.Contains(strings.ToLower(t.Subject), q) }
	case ByLabel:
		label, err := ParseLabel(query)
		if err != nil {
			return []Task{}, nil
		}
		match = func(t Task) bool { return t.Labels.Has(label) }
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownSearchMode, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Task{}
	for _, t := range s.tasks {
		if match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Duration reports the working time of a done task, measured from its
// last move to Doing until its move to Done.
func (s *Store) Duration(id int) (Elapsed, error) {
	t, err := s.Get(id)
	if err != nil {
		return Elapsed{}, err
	}
	if t.Status != Done {
		return Elapsed{}, &StateError{ID: id, Err: ErrNotDone}
	}
	// Reachable without tampering: Todo -> Done never sets a start time.
	if !t.Started() || !t.Finished() {
		return Elapsed{}, &StateError{ID: id, Err: ErrCorrupted}
	}
	return ElapsedFrom(t.FinishTime.Sub(t.StartTime)), nil
}

func (s *Store) update(id int, fn func(*Task)) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	fn(&s.tasks[i])
	return s.tasks[i], nil
}

func (s *Store) indexOf(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
