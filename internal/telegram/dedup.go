package telegram

import "sync"

// seenUpdates remembers the most recent update IDs in a fixed-size ring.
// Once full, adding an ID evicts the oldest one.
type seenUpdates struct {
	mu    sync.Mutex
	ring  []int
	next  int
	full  bool
	index map[int]struct{}
}

func newSeenUpdates(capacity int) *seenUpdates {
	if capacity < 1 {
		capacity = 1
	}
	return &seenUpdates{ring: make([]int, capacity), index: make(map[int]struct{}, capacity)}
}

// add records id and reports whether it was new.
func (s *seenUpdates) add(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return false
	}
	if s.full {
		delete(s.index, s.ring[s.next])
	}
	s.ring[s.next] = id
	s.index[id] = struct{}{}
	s.next++
	if s.next == len(s.ring) {
		s.next = 0
		s.full = true
	}
	return true
}

func (s *seenUpdates) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}
