package runtime

import (
	"sync"
	"time"

	"github.com/aretw0/splash/pkg/ports"
)

// TaskKind identifies what a delayed task does.
type TaskKind string

const (
	TaskTick    TaskKind = "tick"    // Advance the sequence to a step
	TaskRecover TaskKind = "recover" // Resolve a transient fault
	TaskHide    TaskKind = "hide"    // Display timeout
)

// TaskKey identifies a delayed task. Step is -1 for controller-level tasks.
type TaskKey struct {
	Kind TaskKind
	Step int
}

type taskEntry struct {
	timer ports.Timer
}

// TaskSet tracks every pending delayed callback of a controller so teardown can
// enumerate and cancel them at once.
type TaskSet struct {
	clock ports.Clock

	mu     sync.Mutex
	tasks  map[TaskKey]*taskEntry
	closed bool
}

// NewTaskSet creates an empty task set driven by clock.
func NewTaskSet(clock ports.Clock) *TaskSet {
	return &TaskSet{
		clock: clock,
		tasks: make(map[TaskKey]*taskEntry),
	}
}

// Schedule runs fn after d unless the key is cancelled first.
// It returns false if the set is closed or a task with the same key is pending.
func (s *TaskSet) Schedule(key TaskKey, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if _, exists := s.tasks[key]; exists {
		return false
	}

	entry := &taskEntry{}
	s.tasks[key] = entry
	entry.timer = s.clock.AfterFunc(d, func() {
		if !s.claim(key, entry) {
			return
		}
		fn()
	})
	return true
}

// claim removes the entry if it is still the pending task for key.
func (s *TaskSet) claim(key TaskKey, entry *taskEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[key] != entry {
		return false
	}
	delete(s.tasks, key)
	return true
}

// Cancel stops a single pending task.
func (s *TaskSet) Cancel(key TaskKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tasks[key]
	if !ok {
		return false
	}
	delete(s.tasks, key)
	if entry.timer != nil {
		entry.timer.Stop()
	}
	return true
}

// CancelAll stops every pending task and closes the set to new ones.
// It returns how many tasks were cancelled.
func (s *TaskSet) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tasks)
	for key, entry := range s.tasks {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		delete(s.tasks, key)
	}
	s.closed = true
	return n
}

// Len returns the number of pending tasks.
func (s *TaskSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Has reports whether a task is pending for key.
func (s *TaskSet) Has(key TaskKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}
