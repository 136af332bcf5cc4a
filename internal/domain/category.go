package domain

import "strings"

// EventCategory is the closed set of report categories.
type EventCategory string

const (
	CategoryTraffic        EventCategory = "Traffic"
	CategoryCivicIssue     EventCategory = "Civic Issue"
	CategoryCommunityEvent EventCategory = "Community Event"
	CategorySafetyHazard   EventCategory = "Safety Hazard"
	CategoryOther          EventCategory = "Other"
)

// Categories lists every category in display order.
var Categories = []EventCategory{
	CategoryTraffic,
	CategoryCivicIssue,
	CategoryCommunityEvent,
	CategorySafetyHazard,
	CategoryOther,
}

// Known reports whether c is one of the five canonical labels.
func (c EventCategory) Known() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps free text onto a category. Case, surrounding
// whitespace and word separators are ignored; anything unrecognized is Other.
func ParseCategory(s string) EventCategory {
	key := categoryKey(s)
	for _, c := range Categories {
		if categoryKey(string(c)) == key {
			return c
		}
	}
	return CategoryOther
}

func categoryKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
