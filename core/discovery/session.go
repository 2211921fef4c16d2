package discovery

import (
	"sync"

	"liquidshuffle/core/textnorm"
)

// SessionMemory tracks albums already surfaced in the running session, both
// by catalog id and by normalized source title. It lives for the process
// lifetime and is cleared on explicit reset or when the candidate pool is
// exhausted.
type SessionMemory struct {
	mu     sync.Mutex
	ids    map[string]struct{}
	titles map[string]struct{}
	// order keeps remembered source titles in surfacing order for the AI
	// exclusion list.
	order []string
}

// NewSessionMemory creates an empty session memory.
func NewSessionMemory() *SessionMemory {
	s := &SessionMemory{}
	s.reset()
	return s
}

func (s *SessionMemory) reset() {
	s.ids = make(map[string]struct{})
	s.titles = make(map[string]struct{})
	s.order = nil
}

// Remember records a surfaced album by id and source title.
func (s *SessionMemory) Remember(id, originalName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		s.ids[id] = struct{}{}
	}
	norm := textnorm.Normalize(originalName)
	if norm == "" {
		return
	}
	if _, dup := s.titles[norm]; !dup {
		s.titles[norm] = struct{}{}
		s.order = append(s.order, originalName)
	}
}

// Seen reports whether an entry with this id or source title was already
// surfaced. Either argument may be empty.
func (s *SessionMemory) Seen(id, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.ids[id]; ok {
			return true
		}
	}
	if title != "" {
		if _, ok := s.titles[textnorm.Normalize(title)]; ok {
			return true
		}
	}
	return false
}

// Reset clears the session.
func (s *SessionMemory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Len reports how many distinct titles have been surfaced.
func (s *SessionMemory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.titles)
}

// RecentTitles returns up to n most recently surfaced source titles, newest
// last. It bounds the AI exclusion list so prompts stay small.
func (s *SessionMemory) RecentTitles(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || len(s.order) == 0 {
		return nil
	}
	start := len(s.order) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, len(s.order)-start)
	copy(out, s.order[start:])
	return out
}
