package sales

import "sync"

// Sequence issues customer numbers for the lifetime of the process.
// Rollback simply decrements, so a rollback interleaved with another
// submission's Next can hand the same number out twice.
type Sequence struct {
	mu sync.Mutex
	n  int
}

// NewSequence returns a sequence starting at zero.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments the sequence and returns the new value.
func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

// Rollback gives back the most recently issued number.
func (s *Sequence) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n > 0 {
		s.n--
	}
}

// Reset sets the sequence back to zero.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}

// Current returns the last issued number, zero if none.
func (s *Sequence) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
