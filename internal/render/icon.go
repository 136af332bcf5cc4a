package render

import "github.com/couchcryptid/city-pulse-service/internal/domain"

// Icon keys per category.
const (
	IconTraffic        = "traffic"
	IconCivicIssue     = "civic-issue"
	IconCommunityEvent = "community-event"
	IconSafetyHazard   = "safety-hazard"
	IconOther          = "other"
)

var icons = map[domain.EventCategory]string{
	domain.CategoryTraffic:        IconTraffic,
	domain.CategoryCivicIssue:     IconCivicIssue,
	domain.CategoryCommunityEvent: IconCommunityEvent,
	domain.CategorySafetyHazard:   IconSafetyHazard,
	domain.CategoryOther:          IconOther,
}

// Icon returns the stable icon key for c, falling back to IconOther.
func Icon(c domain.EventCategory) string {
	if icon, ok := icons[c]; ok {
		return icon
	}
	return IconOther
}
