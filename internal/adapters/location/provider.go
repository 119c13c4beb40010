package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/pkg/metrics"
)

// Provider implements ports.LocationSource against the device gateway: the
// edge service that holds each session's phone-reported position and
// permission state.
type Provider struct {
	baseURL string
	client  *http.Client
}

// New creates a Provider. timeout is the transport-level ceiling; the
// calling service applies its own per-request deadline on top.
func New(baseURL string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FreshFix asks the gateway for the session's current fix. A 403 means the
// user refused the location permission; anything else unexpected is a
// transient position failure.
func (p *Provider) FreshFix(ctx context.Context, sessionID string) (domain.Coordinate, error) {
	url := fmt.Sprintf("%s/v1/sessions/%s/fix", p.baseURL, sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Coordinate{}, domain.ErrPositionUnavailable
	}

	resp, err := p.client.Do(req)
	if err != nil {
		// Callers see domain errors, never raw context ones.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.LocationResolutions.WithLabelValues("timeout").Inc()
			return domain.Coordinate{}, domain.ErrLocationTimeout
		}
		metrics.LocationResolutions.WithLabelValues("unavailable").Inc()
		return domain.Coordinate{}, domain.ErrPositionUnavailable
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusForbidden:
		metrics.LocationResolutions.WithLabelValues("permission_denied").Inc()
		return domain.Coordinate{}, domain.ErrPermissionDenied
	default:
		metrics.LocationResolutions.WithLabelValues("unavailable").Inc()
		return domain.Coordinate{}, domain.ErrPositionUnavailable
	}

	var fix struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fix); err != nil {
		metrics.LocationResolutions.WithLabelValues("unavailable").Inc()
		return domain.Coordinate{}, domain.ErrPositionUnavailable
	}
	if fix.Lat < -90 || fix.Lat > 90 || fix.Lon < -180 || fix.Lon > 180 {
		metrics.LocationResolutions.WithLabelValues("unavailable").Inc()
		return domain.Coordinate{}, domain.ErrPositionUnavailable
	}

	metrics.LocationResolutions.WithLabelValues("ok").Inc()
	return domain.Coordinate{Lat: fix.Lat, Lon: fix.Lon}, nil
}
