package domain

import (
	"fmt"
	"math"
	"time"
)

// Category is the leaf tag attached to a listing.
type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryBread      Category = "bread"
	CategoryFruit      Category = "fruit"
	CategoryGrains     Category = "grains"
	CategoryDairy      Category = "dairy"
	CategoryFoodOther  Category = "food-other"
	CategoryClothing   Category = "clothing"
	CategoryKitchen    Category = "kitchen"
	CategoryEducation  Category = "education"
	CategoryHousehold  Category = "household"
	CategoryOther      Category = "other"
)

// Categories lists every leaf category in display order.
var Categories = []Category{
	CategoryVegetables,
	CategoryFruit,
	CategoryBread,
	CategoryGrains,
	CategoryDairy,
	CategoryFoodOther,
	CategoryClothing,
	CategoryKitchen,
	CategoryEducation,
	CategoryHousehold,
	CategoryOther,
}

// Cities is the closed set of cities a listing or a user can belong to.
var Cities = []string{
	"Gaborone",
	"Francistown",
	"Maun",
	"Serowe",
	"Molepolole",
	"Kasane",
	"Palapye",
	"Lobatse",
	"Selibe Phikwe",
	"Kanye",
	"Mochudi",
	"Mahalapye",
}

// PickupPlaces are the well-known public places offered when posting.
// "Other" requires a free-text place.
var PickupPlaces = []string{
	"School",
	"Clinic",
	"Kgotla",
	"Community Center",
	"Police Station",
	"Community Hall",
	"Church",
	"Library",
	PickupOther,
}

const PickupOther = "Other"

// IsValidCategory reports whether c is a known leaf category.
func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// IsValidCity reports whether city belongs to the closed city set.
func IsValidCity(city string) bool {
	for _, known := range Cities {
		if known == city {
			return true
		}
	}
	return false
}

// Listing is one shareable item posted by a user or synthesized by the feed.
//
// Listings are immutable once inserted in a store: every accessor hands out
// copies and nothing in the core edits a listing in place.
type Listing struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is unique across the catalog for the listing's lifetime.
	ID string `json:"id" yaml:"id"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`

	// Quantity is a free-text magnitude ("5kg", "12 loaves").
	Quantity string `json:"quantity" yaml:"quantity"`

	// ImageURL is optional.
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`

	// ─────────────────────────────
	// Location
	// ─────────────────────────────

	// Location is the searchable location text. Usually equal to City.
	Location string `json:"location" yaml:"location"`

	// City is drawn from Cities and is what the city filter matches.
	City string `json:"city" yaml:"city"`

	// PickupLocation is where the item can be collected.
	// Example: Kasane Police Station, Kasane
	PickupLocation string `json:"pickup_location" yaml:"pickup_location"`

	// ─────────────────────────────
	// Provenance & lifetime
	// ─────────────────────────────

	PostedBy   string    `json:"posted_by" yaml:"posted_by"`
	PostedDate time.Time `json:"posted_date" yaml:"posted_date"`

	// AvailableUntil is only used to derive the expired state.
	// Expired listings stay in the store.
	AvailableUntil time.Time `json:"available_until" yaml:"available_until"`
}

// DaysLeft returns the number of days until AvailableUntil, rounded up.
// A negative value means the listing has expired.
func (l Listing) DaysLeft(now time.Time) int {
	days := l.AvailableUntil.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// Expired reports whether the listing is past its availability window.
func (l Listing) Expired(now time.Time) bool {
	return l.DaysLeft(now) < 0
}

// Availability returns a short human label for the remaining window.
func (l Listing) Availability(now time.Time) string {
	switch d := l.DaysLeft(now); {
	case d < 0:
		return "Expired"
	case d == 0:
		return "Today"
	case d == 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("%d days", d)
	}
}
