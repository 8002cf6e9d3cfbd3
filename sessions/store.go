package sessions

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps every live studio in memory. Nothing survives a restart.
type Store struct {
	deps Dependencies
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Studio
}

func NewStore(deps Dependencies) *Store {
	return &Store{
		deps:     deps,
		now:      time.Now,
		sessions: map[string]*Studio{},
	}
}

func (s *Store) Create() *Studio {
	studio := NewStudio(uuid.New().String(), s.deps)
	studio.touch(s.now())
	s.mu.Lock()
	s.sessions[studio.ID] = studio
	s.mu.Unlock()
	return studio
}

// Get returns the studio and marks it as active.
func (s *Store) Get(id string) (*Studio, error) {
	s.mu.Lock()
	studio, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	studio.touch(s.now())
	return studio, nil
}

func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	studio, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		studio.Exit(ctx)
	}
}

// Sweep tears down studios idle for longer than maxIdle and returns how many
// were removed.
func (s *Store) Sweep(ctx context.Context, maxIdle time.Duration) int {
	now := s.now()
	var expired []*Studio
	s.mu.Lock()
	for id, studio := range s.sessions {
		if studio.idleSince(now) > maxIdle {
			expired = append(expired, studio)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, studio := range expired {
		studio.Exit(ctx)
	}
	if len(expired) > 0 {
		log.Printf("[Sweep] removed %d idle sessions", len(expired))
	}
	return len(expired)
}

// RunSweeper sweeps on every tick until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx, maxIdle)
		}
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
