package location_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clicbook/clicbook/internal/adapters/location"
	"github.com/clicbook/clicbook/internal/core/domain"
)

func TestFreshFix_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/sess-1/fix" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lat":48.8566,"lon":2.3522}`))
	}))
	defer srv.Close()

	p := location.New(srv.URL, time.Second)
	fix, err := p.FreshFix(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fix.Lat != 48.8566 || fix.Lon != 2.3522 {
		t.Errorf("fix = %+v", fix)
	}
}

func TestFreshFix_PermissionDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := location.New(srv.URL, time.Second)
	if _, err := p.FreshFix(context.Background(), "s"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestFreshFix_GatewayErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := location.New(srv.URL, time.Second)
	if _, err := p.FreshFix(context.Background(), "s"); !errors.Is(err, domain.ErrPositionUnavailable) {
		t.Errorf("expected ErrPositionUnavailable, got %v", err)
	}
}

func TestFreshFix_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := location.New(srv.URL, time.Second)
	// The raw context error must not leak past the adapter boundary.
	if _, err := p.FreshFix(ctx, "s"); !errors.Is(err, domain.ErrLocationTimeout) {
		t.Errorf("expected ErrLocationTimeout, got %v", err)
	}
}

func TestFreshFix_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	p := location.New(srv.URL, time.Second)
	if _, err := p.FreshFix(ctx, "s"); !errors.Is(err, domain.ErrPositionUnavailable) {
		t.Errorf("cancellation must surface as ErrPositionUnavailable, got %v", err)
	}
}

func TestFreshFix_RejectsOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat":123.0,"lon":0}`))
	}))
	defer srv.Close()

	p := location.New(srv.URL, time.Second)
	if _, err := p.FreshFix(context.Background(), "s"); !errors.Is(err, domain.ErrPositionUnavailable) {
		t.Errorf("out-of-range coordinates must be rejected, got %v", err)
	}
}
