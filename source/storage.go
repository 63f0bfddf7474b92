package source

import "sync"

// Storage maps handles to decoded sources. Get returns nil for handles whose
// sound has not finished decoding, which is what drives play-command retries.
type Storage struct {
	mu      sync.RWMutex
	sources map[Handle]*AudioSource
}

func NewStorage() *Storage {
	return &Storage{sources: make(map[Handle]*AudioSource)}
}

// Add registers a decoded source under a fresh handle.
func (s *Storage) Add(src *AudioSource) Handle {
	h := NewHandle()
	s.Set(h, src)
	return h
}

// Set resolves (or replaces, on hot reload) the source for a handle.
func (s *Storage) Set(h Handle, src *AudioSource) {
	s.mu.Lock()
	s.sources[h] = src
	s.mu.Unlock()
}

// Get returns the decoded source for a handle, or nil if it is not loaded yet.
func (s *Storage) Get(h Handle) *AudioSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources[h]
}

// Remove drops a source. Outstanding handles simply stop resolving.
func (s *Storage) Remove(h Handle) {
	s.mu.Lock()
	delete(s.sources, h)
	s.mu.Unlock()
}

// Len returns the number of resolved sources.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}
