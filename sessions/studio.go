package sessions

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"studioapi/models"
	"studioapi/services"
)

type Dependencies struct {
	Images                services.ImageServiceProvider
	Handles               services.DisplayHandleProvider
	WhitenModelBackground bool
}

// Studio routes one user between the landing screen and the two
// experiences. Each experience is created fresh on entry and torn down on
// exit, so nothing leaks between them.
type Studio struct {
	ID   string
	deps Dependencies

	mu       sync.Mutex
	active   models.App
	editor   *PhotoEditor
	tryOn    *TryOn
	lastSeen time.Time
}

func NewStudio(id string, deps Dependencies) *Studio {
	return &Studio{
		ID:       id,
		deps:     deps,
		active:   models.AppLanding,
		lastSeen: time.Now(),
	}
}

func (s *Studio) ActiveApp() models.App {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Select enters an experience. Only allowed from the landing screen.
func (s *Studio) Select(app models.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != models.AppLanding {
		return fmt.Errorf("%w: %s is open, exit it first", ErrInvalidTransition, s.active)
	}
	switch app {
	case models.AppPhotoEditor:
		s.editor = NewPhotoEditor(s.deps.Images, s.deps.Handles)
	case models.AppVirtualTryOn:
		s.tryOn = NewTryOn(s.deps.Images, s.deps.Handles, s.deps.WhitenModelBackground)
	default:
		return fmt.Errorf("%w: cannot select %s", ErrInvalidTransition, app)
	}
	s.active = app
	log.Printf("[Session: %s] entered %s", s.ID, app)
	return nil
}

// Exit returns to landing and tears the active experience down. Calls still
// in flight finish but their results are dropped.
func (s *Studio) Exit(ctx context.Context) {
	s.mu.Lock()
	editor, tryOn := s.editor, s.tryOn
	s.editor, s.tryOn = nil, nil
	previous := s.active
	s.active = models.AppLanding
	s.mu.Unlock()

	if editor != nil {
		editor.Close(ctx)
	}
	if tryOn != nil {
		tryOn.Close(ctx)
	}
	if previous != models.AppLanding {
		log.Printf("[Session: %s] left %s", s.ID, previous)
	}
}

func (s *Studio) Editor() (*PhotoEditor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != models.AppPhotoEditor {
		return nil, fmt.Errorf("%w: photo editor is not open", ErrWrongScreen)
	}
	return s.editor, nil
}

func (s *Studio) TryOn() (*TryOn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != models.AppVirtualTryOn {
		return nil, fmt.Errorf("%w: virtual try-on is not open", ErrWrongScreen)
	}
	return s.tryOn, nil
}

func (s *Studio) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Studio) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Studio) View() models.StudioOut {
	return models.StudioOut{SessionID: s.ID, ActiveApp: s.ActiveApp()}
}
