package seed

// File represents the top-level structure of a seed file
type File struct {
	Listings []Entry `yaml:"listings"`
}

// Entry is one listing as written in the seed file.
// Dates are "2006-01-02" or RFC 3339.
type Entry struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Location       string `yaml:"location,omitempty"` // defaults to City
	City           string `yaml:"city"`
	Category       string `yaml:"category"`
	Quantity       string `yaml:"quantity"`
	PostedBy       string `yaml:"posted_by"`
	PostedDate     string `yaml:"posted_date"`
	PickupLocation string `yaml:"pickup_location"`
	AvailableUntil string `yaml:"available_until"`
	ImageURL       string `yaml:"image_url,omitempty"`
}
