package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/MrSnakeDoc/moraka/internal/domain"
)

func TestDecodeListings(t *testing.T) {
	good := domain.Listing{
		ID:         "l-1",
		Title:      "Fresh spinach",
		City:       "Gaborone",
		PostedDate: time.Date(2025, 11, 8, 9, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(good)
	if err != nil {
		t.Fatalf("failed to marshal listing: %v", err)
	}

	ids := []string{"l-1", "l-expired", "l-garbage", "l-empty"}
	values := []interface{}{string(raw), nil, "{not json", "{}"}

	listings, stale := decodeListings(ids, values)

	if len(listings) != 1 || listings[0].ID != "l-1" {
		t.Fatalf("decodeListings() listings = %+v, want only l-1", listings)
	}
	if listings[0].Title != good.Title || !listings[0].PostedDate.Equal(good.PostedDate) {
		t.Errorf("decoded listing = %+v, want %+v", listings[0], good)
	}

	wantStale := []string{"l-expired", "l-garbage", "l-empty"}
	if len(stale) != len(wantStale) {
		t.Fatalf("decodeListings() stale = %v, want %v", stale, wantStale)
	}
	for i := range wantStale {
		if stale[i] != wantStale[i] {
			t.Errorf("stale[%d] = %q, want %q", i, stale[i], wantStale[i])
		}
	}
}

func TestDecodeListings_Empty(t *testing.T) {
	listings, stale := decodeListings(nil, nil)
	if len(listings) != 0 || len(stale) != 0 {
		t.Errorf("decodeListings(nil) = %v, %v, want empty", listings, stale)
	}
}

func TestListingKey(t *testing.T) {
	if got := ListingKey("abc"); got != "moraka:listing:abc" {
		t.Errorf("ListingKey() = %q", got)
	}
	if got := ListingsByDateKey(); got != "moraka:listings:by_date" {
		t.Errorf("ListingsByDateKey() = %q", got)
	}
}
