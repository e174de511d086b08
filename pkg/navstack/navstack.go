package navstack

import (
	"time"
)

// Entry is a single visited page on a session's navigation trail.
type Entry struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Route     string    `json:"route"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// Stack is a seeded navigation history. The seed entry is permanent:
// Pop and Reset can never leave the stack empty.
type Stack struct {
	entries []Entry
}

func New(seed Entry) *Stack {
	if seed.Timestamp.IsZero() {
		seed.Timestamp = time.Now()
	}
	return &Stack{entries: []Entry{seed}}
}

func (s *Stack) Push(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	s.entries = append(s.entries, entry)
}

// Pop removes the top entry and returns the new current one. When only
// the seed remains it returns the seed unchanged and false.
func (s *Stack) Pop() (Entry, bool) {
	if len(s.entries) <= 1 {
		return s.entries[0], false
	}
	s.entries = s.entries[:len(s.entries)-1]
	return s.entries[len(s.entries)-1], true
}

// Reset drops everything above the seed.
func (s *Stack) Reset() Entry {
	s.entries = s.entries[:1]
	return s.entries[0]
}

func (s *Stack) Current() Entry {
	return s.entries[len(s.entries)-1]
}

func (s *Stack) CanGoBack() bool {
	return len(s.entries) > 1
}

func (s *Stack) Depth() int {
	return len(s.entries)
}

// Breadcrumbs returns the trail from the seed to the current entry.
func (s *Stack) Breadcrumbs() []Entry {
	trail := make([]Entry, len(s.entries))
	copy(trail, s.entries)
	return trail
}
