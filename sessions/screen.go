package sessions

import (
	"context"
	"fmt"
	"log"
	"sync"

	"studioapi/models"
	"studioapi/services"

	"github.com/getsentry/sentry-go"
)

// screen is the shared state machine of a single screen: one mutex, one
// loading slot and one error slot. The zero value is ready to use.
type screen struct {
	mu       sync.Mutex
	name     string
	loading  models.LoadingReason
	errMsg   *string
	closed   bool
	blocking bool
}

// idle must be called with mu held. Unlike ready it ignores the error slot.
func (s *screen) idle() error {
	if s.closed {
		return ErrClosed
	}
	if s.loading != models.LoadingNone {
		return ErrBusy
	}
	return nil
}

// ready must be called with mu held.
func (s *screen) ready() error {
	if err := s.idle(); err != nil {
		return err
	}
	if s.blocking && s.errMsg != nil {
		return ErrUnacknowledgedError
	}
	return nil
}

// fail must be called with mu held.
func (s *screen) fail(message string) {
	s.errMsg = &message
}

// dismiss clears the error slot.
func (s *screen) dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.errMsg = nil
	return nil
}

func (s *screen) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *screen) errorCopy() *string {
	if s.errMsg == nil {
		return nil
	}
	msg := *s.errMsg
	return &msg
}

// external runs one call to the image service. It must be entered with mu
// held and returns with mu held. The lock is released for the duration of
// the call; the call itself does not inherit client cancellation.
func (s *screen) external(ctx context.Context, reason models.LoadingReason, call func(ctx context.Context) (*models.ImageAsset, error)) (*models.ImageAsset, error) {
	s.loading = reason
	s.mu.Unlock()

	asset, err := call(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.loading = models.LoadingNone
	if s.closed {
		log.Printf("[Session: %s] %s result discarded, %s was closed", services.SessionIDFrom(ctx), reason, s.name)
		return nil, ErrClosed
	}
	if err != nil {
		log.Printf("[Session: %s] %s failed: %v", services.SessionIDFrom(ctx), reason, err)
		sentry.CaptureException(fmt.Errorf("[Session: %s] %s: %w", services.SessionIDFrom(ctx), reason, err))
		s.fail(services.UserMessage(err))
		return nil, fmt.Errorf("%w: %w", ErrExternal, err)
	}
	return asset, nil
}
