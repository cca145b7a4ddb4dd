package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/moraka/internal/domain"
)

//go:embed listings.yaml
var defaultSeed []byte

// Loader reads the catalog a session starts with.
// An empty path selects the built-in catalog.
type Loader struct {
	filePath string
}

// NewLoader creates a new seed loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, parses and maps the seed listings, in file order.
func (l *Loader) Load() ([]domain.Listing, error) {
	data := defaultSeed
	if l.filePath != "" {
		var err error
		data, err = os.ReadFile(l.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes a seed document and maps every entry to a domain listing.
func Parse(data []byte) ([]domain.Listing, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	listings := make([]domain.Listing, 0, len(file.Listings))
	seen := make(map[string]bool, len(file.Listings))
	for i, e := range file.Listings {
		l, err := e.toListing()
		if err != nil {
			return nil, fmt.Errorf("seed entry %d (%q): %w", i, e.ID, err)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("seed entry %d: %w: %s", i, domain.ErrDuplicateListing, l.ID)
		}
		seen[l.ID] = true
		listings = append(listings, l)
	}
	return listings, nil
}

func (e Entry) toListing() (domain.Listing, error) {
	if e.ID == "" {
		return domain.Listing{}, fmt.Errorf("missing id")
	}
	if e.Title == "" {
		return domain.Listing{}, fmt.Errorf("missing title")
	}
	if !domain.IsValidCity(e.City) {
		return domain.Listing{}, fmt.Errorf("unknown city %q", e.City)
	}
	category := domain.Category(e.Category)
	if !domain.IsValidCategory(category) {
		return domain.Listing{}, fmt.Errorf("unknown category %q", e.Category)
	}

	posted, err := parseDate(e.PostedDate)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("posted_date: %w", err)
	}
	until, err := parseDate(e.AvailableUntil)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("available_until: %w", err)
	}

	location := e.Location
	if location == "" {
		location = e.City
	}

	return domain.Listing{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Category:       category,
		Quantity:       e.Quantity,
		ImageURL:       e.ImageURL,
		Location:       location,
		City:           e.City,
		PickupLocation: e.PickupLocation,
		PostedBy:       e.PostedBy,
		PostedDate:     posted,
		AvailableUntil: until,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}
