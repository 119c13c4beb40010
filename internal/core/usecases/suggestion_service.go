package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/clicbook/clicbook/internal/core/ports"
)

// DefaultSuggestionLimit caps a suggestion lookup when the caller does not
// set its own limit.
const DefaultSuggestionLimit = 5

// minPrefixLen filters out noisy single-character lookups.
const minPrefixLen = 2

// SuggestionService answers search-term completions against the
// service-category vocabulary. Lookups are pure and synchronous over an
// in-memory snapshot; the vocabulary is refreshed out of band. Debouncing
// keystrokes is the caller's job.
type SuggestionService struct {
	listings ports.ListingRepository
	vocab    atomic.Value // []string

	// DefaultLimit caps lookups whose callers pass no limit of their own.
	// Zero selects DefaultSuggestionLimit.
	DefaultLimit int
}

// NewSuggestionService creates a SuggestionService with an empty vocabulary.
func NewSuggestionService(listings ports.ListingRepository) *SuggestionService {
	s := &SuggestionService{listings: listings}
	s.vocab.Store([]string(nil))
	return s
}

// Suggest returns up to limit vocabulary entries containing prefix,
// case-insensitively, deduplicated, in vocabulary order. Prefixes shorter
// than two characters return nothing.
func (s *SuggestionService) Suggest(prefix string, limit int) []string {
	// Runes, not bytes: "é" is one character, not two.
	if utf8.RuneCountInString(prefix) < minPrefixLen {
		return nil
	}
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	needle := strings.ToLower(prefix)
	vocab, _ := s.vocab.Load().([]string)

	var out []string
	seen := make(map[string]struct{})
	for _, term := range vocab {
		if !strings.Contains(strings.ToLower(term), needle) {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Refresh reloads the vocabulary from the listing catalog. The swap is
// atomic; in-flight lookups keep the old snapshot.
func (s *SuggestionService) Refresh(ctx context.Context) error {
	names, err := s.listings.CategoryNames(ctx)
	if err != nil {
		return fmt.Errorf("refresh suggestion vocabulary: %w", err)
	}
	s.vocab.Store(names)
	return nil
}

// SetVocabulary replaces the vocabulary directly. Used at startup before the
// first refresh and in tests.
func (s *SuggestionService) SetVocabulary(terms []string) {
	s.vocab.Store(terms)
}

// StartRefreshing refreshes the vocabulary every interval until the context
// is cancelled. Failed refreshes are logged and retried on the next tick.
func (s *SuggestionService) StartRefreshing(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					slog.Warn("suggestion vocabulary refresh failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
