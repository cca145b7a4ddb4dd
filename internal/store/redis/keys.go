package redis

const (
	// KeyPrefixListing is the prefix for listing keys
	KeyPrefixListing = "moraka:listing:"
	// KeyListingsByDate is the sorted set of listing IDs scored by posted date
	KeyListingsByDate = "moraka:listings:by_date"
)

// ListingKey returns the Redis key for a listing by ID
func ListingKey(id string) string {
	return KeyPrefixListing + id
}

// ListingsByDateKey returns the key for the posted-date index
func ListingsByDateKey() string {
	return KeyListingsByDate
}
