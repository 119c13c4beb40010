package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/core/ports"
)

// LocationService resolves a session's device location and remembers the
// last successful fix. It imposes no retry policy: callers decide whether a
// stale cached fix is preferable to blocking on a fresh one.
type LocationService struct {
	source  ports.LocationSource
	timeout time.Duration

	mu        sync.RWMutex
	lastKnown map[string]domain.Coordinate
}

// NewLocationService creates a LocationService. timeout bounds every fresh
// fix; <= 0 selects 3 seconds.
func NewLocationService(source ports.LocationSource, timeout time.Duration) *LocationService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &LocationService{
		source:    source,
		timeout:   timeout,
		lastKnown: make(map[string]domain.Coordinate),
	}
}

// Resolve requests a fresh device fix for the session. A successful fix is
// cached for LastKnown. Errors are one of domain.ErrPermissionDenied,
// domain.ErrPositionUnavailable, or domain.ErrLocationTimeout.
func (s *LocationService) Resolve(ctx context.Context, sessionID string) (domain.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fix, err := s.source.FreshFix(ctx, sessionID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Coordinate{}, domain.ErrLocationTimeout
		}
		return domain.Coordinate{}, err
	}

	s.mu.Lock()
	s.lastKnown[sessionID] = fix
	s.mu.Unlock()

	return fix, nil
}

// LastKnown returns the most recent successfully resolved coordinate for the
// session, or nil if none has resolved yet.
func (s *LocationService) LastKnown(sessionID string) *domain.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.lastKnown[sessionID]; ok {
		return &c
	}
	return nil
}

// BestEffort resolves a fresh fix and degrades instead of failing: on a
// transient failure or timeout it falls back to the last known fix, and on a
// permission refusal it returns nil so discovery runs without a location.
func (s *LocationService) BestEffort(ctx context.Context, sessionID string) *domain.Coordinate {
	fix, err := s.Resolve(ctx, sessionID)
	if err == nil {
		return &fix
	}
	if errors.Is(err, domain.ErrPermissionDenied) {
		return nil
	}
	return s.LastKnown(sessionID)
}
