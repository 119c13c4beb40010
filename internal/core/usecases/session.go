package usecases

import (
	"context"
	"sync"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/pkg/metrics"
)

// ViewPhase is the discovery screen's lifecycle phase.
type ViewPhase string

const (
	PhaseIdle    ViewPhase = "idle"
	PhaseLoading ViewPhase = "loading"
	PhaseReady   ViewPhase = "ready"
	PhaseEmpty   ViewPhase = "empty"
	PhaseFailed  ViewPhase = "failed"
)

// ViewState is one immutable render-ready snapshot for the map and list
// views. Every snapshot replaces the previous one atomically.
type ViewState struct {
	Phase             ViewPhase              `json:"phase"`
	Seq               uint64                 `json:"seq"`
	Query             domain.DiscoveryQuery  `json:"query"`
	Results           []domain.ScoredListing `json:"results,omitempty"`
	Viewport          *domain.Viewport       `json:"viewport,omitempty"`
	SelectedListingID string                 `json:"selected_listing_id,omitempty"`
	Error             string                 `json:"error,omitempty"`
}

// DiscoverySession drives the discovery state machine for one client:
// Idle -> Loading -> Ready | Empty | Failed. Each submitted query gets a
// monotonically increasing sequence number; a completed evaluation whose
// sequence is no longer the latest is discarded, so only the most recent
// query ever reaches the view.
type DiscoverySession struct {
	discovery *DiscoveryService
	locations *LocationService
	sessionID string
	notify    func(ViewState)

	mu        sync.Mutex
	latestSeq uint64
	state     ViewState
}

// NewDiscoverySession creates a session in the Idle phase. notify is called
// with every published snapshot, in state-update order, and may be nil. It
// runs under the session's internal lock and must not call back into the
// session.
func NewDiscoverySession(discovery *DiscoveryService, locations *LocationService, sessionID string, notify func(ViewState)) *DiscoverySession {
	return &DiscoverySession{
		discovery: discovery,
		locations: locations,
		sessionID: sessionID,
		notify:    notify,
		state:     ViewState{Phase: PhaseIdle},
	}
}

// Submit issues a new query, superseding any evaluation still in flight.
// It publishes a Loading snapshot immediately and returns the sequence
// number assigned to this evaluation.
func (s *DiscoverySession) Submit(ctx context.Context, query domain.DiscoveryQuery) uint64 {
	s.mu.Lock()
	s.latestSeq++
	seq := s.latestSeq
	s.state = ViewState{Phase: PhaseLoading, Seq: seq, Query: query}
	s.publish(s.state)
	s.mu.Unlock()

	go s.evaluate(ctx, seq, query)
	return seq
}

// evaluate runs the two async legs of a discovery pass, a candidate fetch
// and a location resolution, joins them, and publishes the outcome if this
// evaluation is still the latest.
func (s *DiscoverySession) evaluate(ctx context.Context, seq uint64, query domain.DiscoveryQuery) {
	type fetchResult struct {
		listings []domain.Listing
		err      error
	}

	fetchCh := make(chan fetchResult, 1)
	locCh := make(chan *domain.Coordinate, 1)

	go func() {
		listings, err := s.discovery.Candidates(ctx, query)
		fetchCh <- fetchResult{listings, err}
	}()
	go func() {
		// Bounded by the location service's own timeout; degrades to the
		// last known fix or nil rather than blocking the evaluation.
		locCh <- s.locations.BestEffort(ctx, s.sessionID)
	}()

	fetched := <-fetchCh
	loc := <-locCh

	metrics.DiscoveryEvaluations.Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.latestSeq {
		metrics.DiscoverySuperseded.Inc()
		return
	}

	if fetched.err != nil {
		s.state = ViewState{Phase: PhaseFailed, Seq: seq, Query: query, Error: fetched.err.Error()}
	} else {
		result := s.discovery.Assemble(query, fetched.listings, loc)
		phase := PhaseReady
		if len(result.Listings) == 0 {
			phase = PhaseEmpty
		}
		s.state = ViewState{
			Phase:    phase,
			Seq:      seq,
			Query:    query,
			Results:  result.Listings,
			Viewport: result.Viewport,
		}
	}

	// Published under the lock so the notify stream can never reorder
	// against a concurrent Submit: once a newer Loading snapshot is out,
	// no snapshot for an older sequence follows it.
	s.publish(s.state)
}

// Select marks a listing as selected. Valid only in the Ready phase and
// does not re-run the evaluation.
func (s *DiscoverySession) Select(listingID string) bool {
	s.mu.Lock()
	if s.state.Phase != PhaseReady {
		s.mu.Unlock()
		return false
	}
	s.state.SelectedListingID = listingID
	s.publish(s.state)
	s.mu.Unlock()
	return true
}

// State returns the latest published snapshot.
func (s *DiscoverySession) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *DiscoverySession) publish(state ViewState) {
	if s.notify != nil {
		s.notify(state)
	}
}
