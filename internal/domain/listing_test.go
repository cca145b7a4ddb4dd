package domain

import (
	"testing"
	"time"
)

func TestListingAvailability(t *testing.T) {
	now := time.Date(2025, 11, 6, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		until       time.Time
		wantLabel   string
		wantExpired bool
	}{
		{name: "past", until: now.Add(-25 * time.Hour), wantLabel: "Expired", wantExpired: true},
		{name: "just passed", until: now.Add(-time.Hour), wantLabel: "Today", wantExpired: false},
		{name: "later today", until: now, wantLabel: "Today"},
		{name: "within a day", until: now.Add(20 * time.Hour), wantLabel: "Tomorrow"},
		{name: "two days", until: now.Add(48 * time.Hour), wantLabel: "2 days"},
		{name: "just over two days", until: now.Add(49 * time.Hour), wantLabel: "3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Listing{AvailableUntil: tt.until}
			if got := l.Availability(now); got != tt.wantLabel {
				t.Errorf("Availability() = %q, want %q", got, tt.wantLabel)
			}
			if got := l.Expired(now); got != tt.wantExpired {
				t.Errorf("Expired() = %v, want %v", got, tt.wantExpired)
			}
		})
	}
}

func TestClosedSets(t *testing.T) {
	if !IsValidCity("Selibe Phikwe") {
		t.Error("Selibe Phikwe should be a valid city")
	}
	if IsValidCity("all") {
		t.Error("the filter sentinel must not be a city")
	}
	if !IsValidCategory(CategoryFoodOther) {
		t.Error("food-other should be a valid category")
	}
	if IsValidCategory(Category(GroupFood)) {
		t.Error("the food group is not a leaf category")
	}
}
