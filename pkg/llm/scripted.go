package llm

import (
	"context"
	"errors"
	"sync"
)

// Scripted is a test double that returns a fixed sequence of responses,
// one per Invoke call, then repeats its last entry. Set Errs[i] to force
// the call at index i to fail instead.
type Scripted struct {
	mu        sync.Mutex
	Responses []string
	Errs      []error
	calls     int
	Prompts   []string
}

// Invoke implements Client.
func (s *Scripted) Invoke(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	idx := s.calls
	if idx >= len(s.Responses) && len(s.Responses) > 0 {
		idx = len(s.Responses) - 1
	}
	s.calls++

	if idx < len(s.Errs) && s.Errs[idx] != nil {
		return "", s.Errs[idx]
	}
	if idx >= len(s.Responses) {
		return "", errors.New("scripted: no response configured")
	}
	return s.Responses[idx], nil
}

// CallCount returns how many times Invoke has been called.
func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
