package domain

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ListingDraft is the raw posting form submitted by a user.
type ListingDraft struct {
	Title                string    `json:"title" validate:"required"`
	Description          string    `json:"description" validate:"required"`
	City                 string    `json:"city" validate:"required,city"`
	Category             Category  `json:"category" validate:"required,category"`
	Quantity             string    `json:"quantity" validate:"required"`
	PickupLocation       string    `json:"pickupLocation" validate:"required"`
	CustomPickupLocation string    `json:"customPickupLocation" validate:"required_if=PickupLocation Other"`
	AvailableUntil       time.Time `json:"availableUntil" validate:"required"`
	ImageURL             string    `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

var draftMessages = map[string]string{
	"title":                "Title is required",
	"description":          "Description is required",
	"city":                 "City is required",
	"category":             "Category is required",
	"quantity":             "Quantity is required",
	"pickupLocation":       "Pickup location is required",
	"customPickupLocation": "Please specify the pickup location",
	"availableUntil":       "Available until date is required",
	"imageUrl":             "Image URL is invalid",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("city", func(fl validator.FieldLevel) bool {
		return IsValidCity(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return IsValidCategory(Category(fl.Field().String()))
	})
	return v
}

// Validate checks every field and returns all failures at once as ValidationErrors.
func (d ListingDraft) Validate() error {
	d = d.trimmed()
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := draftMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		switch fe.Tag() {
		case "city":
			msg = "City must be one of the supported cities"
		case "category":
			msg = "Category must be one of the supported categories"
		}
		out[fe.Field()] = msg
	}
	return out
}

// ToListing builds the listing to insert. The caller assigns the ID.
func (d ListingDraft) ToListing(id, postedBy string, now time.Time) Listing {
	d = d.trimmed()

	place := d.PickupLocation
	if place == PickupOther {
		place = d.CustomPickupLocation
	}

	return Listing{
		ID:             id,
		Title:          d.Title,
		Description:    d.Description,
		Category:       d.Category,
		Quantity:       d.Quantity,
		ImageURL:       d.ImageURL,
		Location:       d.City,
		City:           d.City,
		PickupLocation: place + ", " + d.City,
		PostedBy:       postedBy,
		PostedDate:     now,
		AvailableUntil: d.AvailableUntil,
	}
}

func (d ListingDraft) trimmed() ListingDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Quantity = strings.TrimSpace(d.Quantity)
	d.CustomPickupLocation = strings.TrimSpace(d.CustomPickupLocation)
	return d
}
