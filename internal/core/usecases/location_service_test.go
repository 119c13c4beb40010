package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/core/usecases"
)

// --- Mock LocationSource ---

type mockLocationSource struct {
	freshFixFn func(ctx context.Context, sessionID string) (domain.Coordinate, error)
}

func (m *mockLocationSource) FreshFix(ctx context.Context, sessionID string) (domain.Coordinate, error) {
	if m.freshFixFn != nil {
		return m.freshFixFn(ctx, sessionID)
	}
	return domain.Coordinate{}, domain.ErrPositionUnavailable
}

// --- Tests ---

func TestLocationService_ResolveCachesLastKnown(t *testing.T) {
	want := domain.Coordinate{Lat: 48.8566, Lon: 2.3522}
	src := &mockLocationSource{
		freshFixFn: func(ctx context.Context, sessionID string) (domain.Coordinate, error) {
			return want, nil
		},
	}
	svc := usecases.NewLocationService(src, time.Second)

	got, err := svc.Resolve(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("resolved %+v, want %+v", got, want)
	}

	cached := svc.LastKnown("sess-1")
	if cached == nil || *cached != want {
		t.Errorf("LastKnown = %+v, want %+v", cached, want)
	}
	if svc.LastKnown("other") != nil {
		t.Error("LastKnown leaked across sessions")
	}
}

func TestLocationService_TimeoutClassified(t *testing.T) {
	src := &mockLocationSource{
		freshFixFn: func(ctx context.Context, sessionID string) (domain.Coordinate, error) {
			<-ctx.Done()
			return domain.Coordinate{}, ctx.Err()
		},
	}
	svc := usecases.NewLocationService(src, 10*time.Millisecond)

	_, err := svc.Resolve(context.Background(), "sess-1")
	if err != domain.ErrLocationTimeout {
		t.Errorf("expected ErrLocationTimeout, got %v", err)
	}
}

func TestLocationService_BestEffortFallsBackToLastKnown(t *testing.T) {
	fix := domain.Coordinate{Lat: 45.764, Lon: 4.8357}
	failing := false
	src := &mockLocationSource{
		freshFixFn: func(ctx context.Context, sessionID string) (domain.Coordinate, error) {
			if failing {
				return domain.Coordinate{}, domain.ErrPositionUnavailable
			}
			return fix, nil
		},
	}
	svc := usecases.NewLocationService(src, time.Second)

	if got := svc.BestEffort(context.Background(), "s"); got == nil || *got != fix {
		t.Fatalf("first BestEffort = %+v, want %+v", got, fix)
	}

	failing = true
	if got := svc.BestEffort(context.Background(), "s"); got == nil || *got != fix {
		t.Errorf("BestEffort should fall back to last known fix, got %+v", got)
	}
}

func TestLocationService_BestEffortPermissionDenied(t *testing.T) {
	src := &mockLocationSource{
		freshFixFn: func(ctx context.Context, sessionID string) (domain.Coordinate, error) {
			return domain.Coordinate{}, domain.ErrPermissionDenied
		},
	}
	svc := usecases.NewLocationService(src, time.Second)

	if got := svc.BestEffort(context.Background(), "s"); got != nil {
		t.Errorf("permission refusal must yield a nil location, got %+v", got)
	}
}
