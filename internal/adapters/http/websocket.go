package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/core/usecases"
	"github.com/clicbook/clicbook/internal/pkg/metrics"
)

// wsRequest is sent from client to drive a discovery session.
type wsRequest struct {
	Action string `json:"action"` // "query" | "select" | "suggest"

	// query fields
	Q         string  `json:"q,omitempty"`
	City      string  `json:"city,omitempty"`
	RadiusKm  float64 `json:"radius_km,omitempty"`
	MinRating float64 `json:"min_rating,omitempty"`
	Sort      string  `json:"sort,omitempty"`

	// select field
	ListingID string `json:"listing_id,omitempty"`

	// suggest field
	Prefix string `json:"prefix,omitempty"`
}

const defaultSuggestionDebounce = 200 * time.Millisecond

// WebSocketHandler upgrades to WebSocket and runs one discovery session per
// connection. Every state transition (loading, ready, empty, failed) is
// pushed as a JSON snapshot, and catalog broadcast events from NATS are
// relayed alongside. Suggestion lookups are debounced: rapid "suggest"
// frames collapse to one lookup for the last prefix after a quiet window.
//
// Clients send JSON like:
//
//	{"action":"query","q":"portrait","city":"lyon","sort":"rating"}
//	{"action":"select","listing_id":"..."}
//	{"action":"suggest","prefix":"mar"}
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		sessionID := c.Query("session")
		if sessionID == "" {
			sessionID = c.RemoteAddr().String()
		}
		slog.Info("ws session connected", "session_id", sessionID)
		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		session := usecases.NewDiscoverySession(deps.Discovery, deps.Locations, sessionID, func(state usecases.ViewState) {
			_ = writeJSON(map[string]interface{}{"type": "state", "state": state})
		})

		// Relay catalog broadcasts (listings changed, re-query advised)
		var broadcastSub *nats.Subscription
		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe("marketplace.updates.broadcast", func(msg *nats.Msg) {
				_ = writeJSON(map[string]interface{}{"type": "broadcast", "payload": json.RawMessage(msg.Data)})
			})
			if err != nil {
				slog.Warn("ws broadcast subscribe failed", "error", err)
			} else {
				broadcastSub = sub
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Debounce timer state for suggestion lookups. Only the last prefix
		// observed before the timer fires produces a lookup.
		debounce := deps.SuggestionDebounce
		if debounce <= 0 {
			debounce = defaultSuggestionDebounce
		}
		var suggestMu sync.Mutex
		var suggestTimer *time.Timer
		var pendingPrefix string

		scheduleSuggest := func(prefix string) {
			suggestMu.Lock()
			defer suggestMu.Unlock()
			pendingPrefix = prefix
			if suggestTimer != nil {
				suggestTimer.Stop()
			}
			suggestTimer = time.AfterFunc(debounce, func() {
				suggestMu.Lock()
				p := pendingPrefix
				suggestMu.Unlock()
				metrics.SuggestionLookups.Inc()
				suggestions := deps.Suggestions.Suggest(p, 0)
				_ = writeJSON(map[string]interface{}{"type": "suggestions", "prefix": p, "suggestions": suggestions})
			})
		}

		// Read loop
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch req.Action {
			case "query":
				query := deps.newQuery()
				query.SearchText = req.Q
				query.CityName = req.City
				query.MinRating = req.MinRating
				if req.RadiusKm > 0 {
					query.RadiusKm = req.RadiusKm
				}
				if req.Sort != "" {
					sortBy, err := domain.ParseSortBy(req.Sort)
					if err != nil {
						_ = writeJSON(map[string]string{"error": err.Error()})
						continue
					}
					query.SortBy = sortBy
				}
				session.Submit(ctx, query)

			case "select":
				if req.ListingID == "" {
					_ = writeJSON(map[string]string{"error": "listing_id is required"})
					continue
				}
				if !session.Select(req.ListingID) {
					_ = writeJSON(map[string]string{"error": "selection requires ready results"})
				}

			case "suggest":
				scheduleSuggest(req.Prefix)

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + req.Action})
			}
		}

		// Cleanup
		close(done)
		suggestMu.Lock()
		if suggestTimer != nil {
			suggestTimer.Stop()
		}
		suggestMu.Unlock()
		if broadcastSub != nil {
			_ = broadcastSub.Unsubscribe()
		}
		slog.Info("ws session disconnected", "session_id", sessionID)
	}
}

