package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/clicbook/clicbook/internal/core/usecases"
)

func newSuggestions(vocab []string) *usecases.SuggestionService {
	svc := usecases.NewSuggestionService(&mockListingRepo{})
	svc.SetVocabulary(vocab)
	return svc
}

func TestSuggest_CaseInsensitiveSubstring(t *testing.T) {
	svc := newSuggestions([]string{
		"Photographe mariage",
		"Portrait studio",
		"Photobooth",
		"Drone",
		"Photographe nouveau-ne",
	})

	got := svc.Suggest("PHOTO", 5)
	want := []string{"Photographe mariage", "Photobooth", "Photographe nouveau-ne"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSuggest_Limit(t *testing.T) {
	svc := newSuggestions([]string{"photo a", "photo b", "photo c", "photo d", "photo e", "photo f", "photo g"})

	if got := svc.Suggest("photo", 5); len(got) != 5 {
		t.Errorf("limit 5 returned %d entries", len(got))
	}
	// Zero limit falls back to the default cap.
	if got := svc.Suggest("photo", 0); len(got) != usecases.DefaultSuggestionLimit {
		t.Errorf("default limit returned %d entries", len(got))
	}
}

func TestSuggest_ShortPrefix(t *testing.T) {
	svc := newSuggestions([]string{"Portrait"})
	if got := svc.Suggest("p", 5); got != nil {
		t.Errorf("single-character prefix must return nothing, got %v", got)
	}
	if got := svc.Suggest("", 5); got != nil {
		t.Errorf("empty prefix must return nothing, got %v", got)
	}
}

func TestSuggest_ShortPrefixCountsRunes(t *testing.T) {
	svc := newSuggestions([]string{"Événementiel"})

	// "é" is two bytes but one character; still below the floor.
	if got := svc.Suggest("é", 5); got != nil {
		t.Errorf("one-rune prefix must return nothing, got %v", got)
	}
	if got := svc.Suggest("év", 5); len(got) != 1 || got[0] != "Événementiel" {
		t.Errorf("two-rune accented prefix must match, got %v", got)
	}
}

func TestSuggest_ConfiguredDefaultLimit(t *testing.T) {
	svc := newSuggestions([]string{"photo a", "photo b", "photo c"})
	svc.DefaultLimit = 2

	if got := svc.Suggest("photo", 0); len(got) != 2 {
		t.Errorf("configured default limit returned %d entries", len(got))
	}
	// An explicit limit still wins over the configured default.
	if got := svc.Suggest("photo", 3); len(got) != 3 {
		t.Errorf("explicit limit returned %d entries", len(got))
	}
}

func TestSuggest_Deduplicates(t *testing.T) {
	svc := newSuggestions([]string{"Portrait", "Drone", "Portrait"})
	got := svc.Suggest("portrait", 5)
	if len(got) != 1 {
		t.Errorf("expected deduplicated result, got %v", got)
	}
}

func TestSuggestionRefresh(t *testing.T) {
	repo := &mockListingRepo{
		categoryNamesFn: func(ctx context.Context) ([]string, error) {
			return []string{"Mariage", "Portrait"}, nil
		},
	}
	svc := usecases.NewSuggestionService(repo)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.Suggest("mariage", 5); len(got) != 1 || got[0] != "Mariage" {
		t.Errorf("vocabulary not refreshed, got %v", got)
	}
}

func TestSuggestionRefresh_KeepsOldVocabularyOnError(t *testing.T) {
	fail := false
	repo := &mockListingRepo{
		categoryNamesFn: func(ctx context.Context) ([]string, error) {
			if fail {
				return nil, errors.New("catalog unavailable")
			}
			return []string{"Mariage"}, nil
		},
	}
	svc := usecases.NewSuggestionService(repo)
	_ = svc.Refresh(context.Background())

	fail = true
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := svc.Suggest("mariage", 5); len(got) != 1 {
		t.Errorf("failed refresh must keep the previous vocabulary, got %v", got)
	}
}
