package domain

import "strings"

// FilterAll is the sentinel matching every city or category.
const FilterAll = "all"

// GroupFood expands to every food leaf category.
const GroupFood = "food"

// CategoryGroups maps a group sentinel to the leaf categories it covers.
var CategoryGroups = map[string][]Category{
	GroupFood: {
		CategoryVegetables,
		CategoryBread,
		CategoryFruit,
		CategoryGrains,
		CategoryDairy,
		CategoryFoodOther,
	},
}

// Predicate is the transient (search, city, category) triple applied to a catalog.
// Empty City or Category behave like FilterAll.
type Predicate struct {
	Search   string
	City     string
	Category string
}

// Filter returns the listings matching p, in input order.
// It never mutates its input and always allocates a new slice.
func Filter(listings []Listing, p Predicate) []Listing {
	search := strings.ToLower(p.Search)
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if matchesSearch(l, search) && matchesCity(l, p.City) && matchesCategory(l, p.Category) {
			out = append(out, l)
		}
	}
	return out
}

// Matches reports whether a single listing satisfies p.
func (p Predicate) Matches(l Listing) bool {
	return matchesSearch(l, strings.ToLower(p.Search)) &&
		matchesCity(l, p.City) &&
		matchesCategory(l, p.Category)
}

// matchesSearch expects an already lowercased needle.
func matchesSearch(l Listing, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Title), needle) ||
		strings.Contains(strings.ToLower(l.Description), needle) ||
		strings.Contains(strings.ToLower(l.Location), needle)
}

func matchesCity(l Listing, city string) bool {
	return city == "" || city == FilterAll || l.City == city
}

func matchesCategory(l Listing, category string) bool {
	if category == "" || category == FilterAll {
		return true
	}
	if Category(category) == l.Category {
		return true
	}
	for _, leaf := range CategoryGroups[category] {
		if leaf == l.Category {
			return true
		}
	}
	return false
}
