package controller

import (
	"time"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// State is the position of the single draft in the submission workflow.
type State int

const (
	Idle State = iota
	Composing
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Composing:
		return "composing"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// Outcome records how the last submission attempt resolved. Succeeded
// resolves to Idle and Failed to Composing.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	}
	return "none"
}

// CancelVia names the control that dismissed the modal.
type CancelVia int

const (
	CloseButton CancelVia = iota
	Backdrop
)

// ToastKind selects the notification styling.
type ToastKind string

const (
	ToastError   ToastKind = "error"
	ToastSuccess ToastKind = "success"
)

// Toast is a short-lived notification.
type Toast struct {
	Message   string    `json:"message"`
	Kind      ToastKind `json:"kind"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LocationState drives the location indicator.
type LocationState string

const (
	LocationIdle     LocationState = "idle"
	LocationPending  LocationState = "pending"
	LocationCaptured LocationState = "captured"
	LocationFailed   LocationState = "failed"
)

// LocationStatus is the location indicator: its state and the text shown.
type LocationStatus struct {
	State LocationState `json:"state"`
	Text  string        `json:"text"`
}

// ImageState drives the image indicator.
type ImageState string

const (
	ImageNone     ImageState = "none"
	ImagePending  ImageState = "pending"
	ImageAttached ImageState = "attached"
	ImageFailed   ImageState = "failed"
)

// Draft is the report being composed.
type Draft struct {
	Description string               `json:"description"`
	Image       *domain.EncodedImage `json:"image,omitempty"`
	Location    *domain.GeoLocation  `json:"location,omitempty"`
}

func (d Draft) clone() Draft {
	if d.Image != nil {
		img := *d.Image
		d.Image = &img
	}
	if d.Location != nil {
		loc := *d.Location
		d.Location = &loc
	}
	return d
}

// Snapshot is a copy of everything the controller owns that a renderer reads.
type Snapshot struct {
	State       State
	LastOutcome Outcome
	Draft       Draft
	ModalOpen   bool
	Submitting  bool
	Error       string
	Location    LocationStatus
	Image       ImageState
	Toast       *Toast
}

// Indicator texts.
const (
	locationIdleText    = "Click the button to get your location."
	locationPendingText = "Getting location..."
	locationFailedText  = "Could not get location."
)

// Toast messages.
const (
	MessageValidation     = "Please provide a description and location."
	MessageLocationFailed = "Unable to retrieve your location. Please enable location services."
	MessageImageFailed    = "Unable to read the selected image."
	messageSubmitted      = "Report submitted: "
)
