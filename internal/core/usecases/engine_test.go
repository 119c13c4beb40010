package usecases_test

import (
	"testing"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/core/usecases"
)

// degPerKm along the equator (2*pi*6371/360 km per degree).
const degPerKm = 1.0 / 111.1949

func origin() *domain.Coordinate {
	return &domain.Coordinate{Lat: 0, Lon: 0}
}

// listingAtKm builds an active listing whose single zone center sits
// approximately km kilometers east of the origin.
func listingAtKm(id string, km float64) domain.Listing {
	return domain.Listing{
		ID:     id,
		Title:  "Portrait session " + id,
		Active: true,
		Rating: 4.0,
		Zones: []domain.ServiceZone{
			{CityName: "Testville", RadiusKm: 10, Center: &domain.Coordinate{Lat: 0, Lon: km * degPerKm}},
		},
	}
}

func TestEvaluate_RadiusFilter(t *testing.T) {
	listings := []domain.Listing{
		listingAtKm("near", 5),
		listingAtKm("mid", 15),
		listingAtKm("far", 25),
	}
	q := domain.NewDiscoveryQuery() // 20 km radius, distance sort

	got := usecases.Engine{}.Evaluate(q, listings, origin())

	if len(got) != 2 {
		t.Fatalf("expected 2 listings inside 20 km, got %d", len(got))
	}
	if got[0].ID != "near" || got[1].ID != "mid" {
		t.Errorf("order = [%s %s], want [near mid]", got[0].ID, got[1].ID)
	}
}

func TestEvaluate_CitySearchBypassesRadius(t *testing.T) {
	far := listingAtKm("faraway", 500)
	far.Zones[0].CityName = "Marseille"

	q := domain.NewDiscoveryQuery()
	q.CityName = "marseille" // case-insensitive match

	got := usecases.Engine{}.Evaluate(q, []domain.Listing{far}, origin())
	if len(got) != 1 {
		t.Fatalf("city override should include the far listing, got %d results", len(got))
	}
	if got[0].DistanceKm == nil {
		t.Error("distance should still be annotated under a city search")
	}
}

func TestEvaluate_InactiveDropped(t *testing.T) {
	l := listingAtKm("hidden", 5)
	l.Active = false

	got := usecases.Engine{}.Evaluate(domain.NewDiscoveryQuery(), []domain.Listing{l}, origin())
	if len(got) != 0 {
		t.Fatalf("inactive listing must never surface, got %d results", len(got))
	}
}

func TestEvaluate_EndToEndScenario(t *testing.T) {
	l1 := listingAtKm("L1", 2)
	l1.Rating = 4.8
	l2 := listingAtKm("L2", 1)
	l2.Rating = 5.0
	l2.Active = false
	l3 := listingAtKm("L3", 50)
	l3.Rating = 3.0

	got := usecases.Engine{}.Evaluate(domain.NewDiscoveryQuery(), []domain.Listing{l1, l2, l3}, origin())

	if len(got) != 1 || got[0].ID != "L1" {
		t.Fatalf("expected exactly [L1], got %v", ids(got))
	}
}

func TestEvaluate_TextFilterMatchesTitleOrCategory(t *testing.T) {
	a := listingAtKm("a", 5)
	a.Title = "Mariage a Lyon"
	a.Category = "Wedding"
	b := listingAtKm("b", 5)
	b.Title = "Studio portrait"
	b.Category = "Portrait"

	q := domain.NewDiscoveryQuery()
	q.SearchText = "WEDDING"

	got := usecases.Engine{}.Evaluate(q, []domain.Listing{a, b}, origin())
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected [a], got %v", ids(got))
	}
}

func TestEvaluate_MinRatingFilter(t *testing.T) {
	lo := listingAtKm("lo", 5)
	lo.Rating = 3.2
	hi := listingAtKm("hi", 5)
	hi.Rating = 4.6

	q := domain.NewDiscoveryQuery()
	q.MinRating = 4.0

	got := usecases.Engine{}.Evaluate(q, []domain.Listing{lo, hi}, origin())
	if len(got) != 1 || got[0].ID != "hi" {
		t.Fatalf("expected [hi], got %v", ids(got))
	}
}

func TestEvaluate_NoLocationSkipsRadius(t *testing.T) {
	listings := []domain.Listing{listingAtKm("far", 500)}

	got := usecases.Engine{}.Evaluate(domain.NewDiscoveryQuery(), listings, nil)
	if len(got) != 1 {
		t.Fatalf("without a location the radius filter must be a no-op, got %d results", len(got))
	}
	if got[0].DistanceKm != nil {
		t.Error("distance must be nil when the user's location is unknown")
	}
}

func TestEvaluate_DistanceSortNilLast(t *testing.T) {
	resolved := listingAtKm("resolved", 10)
	unresolvedA := listingAtKm("unresA", 0)
	unresolvedA.Zones[0].Center = nil
	unresolvedB := listingAtKm("unresB", 0)
	unresolvedB.Zones[0].Center = nil

	// City search keeps unresolved zones in the result set.
	q := domain.NewDiscoveryQuery()
	q.CityName = "Testville"

	got := usecases.Engine{}.Evaluate(q, []domain.Listing{unresolvedA, resolved, unresolvedB}, origin())
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ID != "resolved" {
		t.Errorf("resolved distance should sort first, got %s", got[0].ID)
	}
	if got[1].ID != "unresA" || got[2].ID != "unresB" {
		t.Errorf("nil distances must keep insertion order, got [%s %s]", got[1].ID, got[2].ID)
	}
}

func TestEvaluate_RatingSortTieStability(t *testing.T) {
	first := listingAtKm("first", 5)
	first.Rating, first.ReviewCount = 4.5, 12
	second := listingAtKm("second", 5)
	second.Rating, second.ReviewCount = 4.5, 12
	busier := listingAtKm("busier", 5)
	busier.Rating, busier.ReviewCount = 4.5, 40

	q := domain.NewDiscoveryQuery()
	q.SortBy = domain.SortByRating

	got := usecases.Engine{}.Evaluate(q, []domain.Listing{first, second, busier}, origin())
	want := []string{"busier", "first", "second"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("rating sort order = %v, want %v", ids(got), want)
		}
	}
}

func TestEvaluate_PriceAndReviewSorts(t *testing.T) {
	cheap := listingAtKm("cheap", 5)
	cheap.PriceAmount, cheap.ReviewCount = 80, 3
	pricey := listingAtKm("pricey", 5)
	pricey.PriceAmount, pricey.ReviewCount = 250, 90

	q := domain.NewDiscoveryQuery()
	q.SortBy = domain.SortByPrice
	got := usecases.Engine{}.Evaluate(q, []domain.Listing{pricey, cheap}, origin())
	if got[0].ID != "cheap" {
		t.Errorf("price sort: got %v", ids(got))
	}

	q.SortBy = domain.SortByReviewCount
	got = usecases.Engine{}.Evaluate(q, []domain.Listing{cheap, pricey}, origin())
	if got[0].ID != "pricey" {
		t.Errorf("review count sort: got %v", ids(got))
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	listings := []domain.Listing{listingAtKm("b", 15), listingAtKm("a", 5)}

	_ = usecases.Engine{}.Evaluate(domain.NewDiscoveryQuery(), listings, origin())
	if listings[0].ID != "b" || listings[1].ID != "a" {
		t.Error("Evaluate reordered its input slice")
	}
}

func TestDeriveViewport(t *testing.T) {
	eng := usecases.Engine{}

	scored := eng.Evaluate(domain.NewDiscoveryQuery(), []domain.Listing{
		listingAtKm("a", 5),
		listingAtKm("b", 15),
	}, origin())

	vp := eng.DeriveViewport(scored)
	if vp == nil {
		t.Fatal("expected a viewport for resolved centers")
	}
	if vp.LatSpanKm <= 0 || vp.LonSpanKm <= 0 {
		t.Errorf("degenerate viewport: %+v", vp)
	}

	if got := eng.DeriveViewport(nil); got != nil {
		t.Error("empty result set must yield a nil viewport")
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		rating float64
		want   domain.RankTier
	}{
		{4.9, domain.TierExcellent},
		{4.5, domain.TierExcellent},
		{4.2, domain.TierGood},
		{3.7, domain.TierFair},
		{3.4, domain.TierPoor},
		{0, domain.TierPoor},
	}
	for _, c := range cases {
		if got := domain.TierFor(c.rating); got != c.want {
			t.Errorf("TierFor(%.1f) = %s, want %s", c.rating, got, c.want)
		}
	}
}

func ids(scored []domain.ScoredListing) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out
}
