// Package render projects the event store and controller state into a view
// model that a rendering backend can draw without further decisions.
package render

import (
	"time"

	"github.com/couchcryptid/city-pulse-service/internal/controller"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// Fixed view text.
const (
	HeaderTitle     = "City Pulse"
	HeaderSubtitle  = "Live Synthesized Events from Bengaluru"
	EmptyMessage    = "No events reported yet. Be the first!"
	ModalTitle      = "Report an Event"
	SubmitLabel     = "Submit Report"
	SubmittingLabel = "Submitting..."

	// TimeLayout mirrors a browser's default locale string.
	TimeLayout = "1/2/2006, 3:04:05 PM"
)

// Options carries the display parameters.
type Options struct {
	Bounds   domain.Bounds
	Location *time.Location // nil means UTC
}

// ViewModel describes a full screen.
type ViewModel struct {
	Header Header            `json:"header"`
	Feed   Feed              `json:"feed"`
	Map    Map               `json:"map"`
	Modal  Modal             `json:"modal"`
	Toast  *controller.Toast `json:"toast,omitempty"`
}

// Header is the feed panel title block.
type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Feed is the scrolling list of cards, newest first.
type Feed struct {
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"emptyMessage,omitempty"`
	Cards        []Card `json:"cards"`
}

// Card is one report in the feed.
type Card struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Category  string    `json:"category"`
	Icon      string    `json:"icon"`
	Footer    string    `json:"footer"`
	Timestamp time.Time `json:"timestamp"`
	HasImage  bool      `json:"hasImage"`
}

// Map is the marker overlay. Only displayable reports have markers.
type Map struct {
	Bounds  domain.Bounds `json:"bounds"`
	Markers []Marker      `json:"markers"`
}

// Marker is a report plotted at a percentage position on the map.
type Marker struct {
	ID       string  `json:"id"`
	EventID  string  `json:"eventId"`
	Top      float64 `json:"top"`
	Left     float64 `json:"left"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Icon     string  `json:"icon"`
}

// Modal is the report form.
type Modal struct {
	Visible      bool                      `json:"visible"`
	Title        string                    `json:"title"`
	Description  string                    `json:"description"`
	ImagePreview string                    `json:"imagePreview,omitempty"`
	ImageState   controller.ImageState     `json:"imageState"`
	Location     controller.LocationStatus `json:"location"`
	Error        string                    `json:"error,omitempty"`
	Submit       SubmitButton              `json:"submit"`
}

// SubmitButton is the submit control state.
type SubmitButton struct {
	Disabled bool   `json:"disabled"`
	Loading  bool   `json:"loading"`
	Label    string `json:"label"`
}

// Delta is the incremental update applied after a successful submission.
type Delta struct {
	Card             Card    `json:"card"`
	Marker           *Marker `json:"marker,omitempty"`
	ClearsEmptyState bool    `json:"clearsEmptyState"`
}
