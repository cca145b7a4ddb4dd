package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() ListingDraft {
	return ListingDraft{
		Title:          "Unsold Bread",
		Description:    "Whole wheat loaves from today",
		City:           "Gaborone",
		Category:       CategoryBread,
		Quantity:       "12 loaves",
		PickupLocation: "Community Hall",
		AvailableUntil: time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC),
	}
}

func TestListingDraftValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validDraft().Validate())
	})

	t.Run("every missing field is reported", func(t *testing.T) {
		err := ListingDraft{Title: "  ", Category: CategoryFruit}.Validate()

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs), "got %T", err)
		assert.Equal(t, "Title is required", verrs["title"])
		assert.Equal(t, "Description is required", verrs["description"])
		assert.Equal(t, "City is required", verrs["city"])
		assert.Equal(t, "Quantity is required", verrs["quantity"])
		assert.Equal(t, "Pickup location is required", verrs["pickupLocation"])
		assert.Equal(t, "Available until date is required", verrs["availableUntil"])
		assert.NotContains(t, verrs, "category")
		assert.NotContains(t, verrs, "customPickupLocation")
	})

	t.Run("other pickup needs a custom place", func(t *testing.T) {
		d := validDraft()
		d.PickupLocation = PickupOther

		var verrs ValidationErrors
		require.True(t, errors.As(d.Validate(), &verrs))
		assert.Equal(t, "Please specify the pickup location", verrs["customPickupLocation"])
		assert.Len(t, verrs, 1)

		d.CustomPickupLocation = "Main Mall"
		assert.NoError(t, d.Validate())
	})

	t.Run("unknown city and category", func(t *testing.T) {
		d := validDraft()
		d.City = "Atlantis"
		d.Category = "toys"

		var verrs ValidationErrors
		require.True(t, errors.As(d.Validate(), &verrs))
		assert.Contains(t, verrs, "city")
		assert.Contains(t, verrs, "category")
	})
}

func TestListingDraftToListing(t *testing.T) {
	now := time.Date(2025, 11, 6, 9, 0, 0, 0, time.UTC)
	d := validDraft()
	d.PickupLocation = PickupOther
	d.CustomPickupLocation = " Main Mall "
	d.Title = " Unsold Bread "

	l := d.ToListing("abc", "Mma Botlhale", now)

	assert.Equal(t, "abc", l.ID)
	assert.Equal(t, "Unsold Bread", l.Title)
	assert.Equal(t, "Main Mall, Gaborone", l.PickupLocation)
	assert.Equal(t, "Gaborone", l.Location)
	assert.Equal(t, "Mma Botlhale", l.PostedBy)
	assert.Equal(t, now, l.PostedDate)
	assert.Equal(t, d.AvailableUntil, l.AvailableUntil)
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidationErrors{"title": "Title is required", "city": "City is required"}
	assert.Equal(t, "invalid listing: city: City is required; title: Title is required", err.Error())
}
