// Package naming provides an explicit, injectable name cache for
// processed image outputs. Names are stable for a file ID across a job
// run; the service carries its own lifecycle instead of living in
// package-level state.
package naming

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Stats reports cache effectiveness.
type Stats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

// Service hands out unique output filenames, one per file ID.
type Service struct {
	mu     sync.Mutex
	names  map[string]string
	hits   int
	misses int
}

// NewService creates an empty naming service.
func NewService() *Service {
	return &Service{names: make(map[string]string)}
}

// Name returns the output filename for a file ID, generating and
// caching one on first use.
func (s *Service) Name(fileID, ext string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name, ok := s.names[fileID]; ok {
		s.hits++
		return name
	}
	s.misses++
	name := fmt.Sprintf("processed_%s.%s", uuid.NewString(), ext)
	s.names[fileID] = name
	return name
}

// Clear drops all cached names and counters.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = make(map[string]string)
	s.hits = 0
	s.misses = 0
}

// Stats returns a snapshot of the cache counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Entries: len(s.names), Hits: s.hits, Misses: s.misses}
}
