package domain

import (
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// GeoLocation is a WGS-84 latitude/longitude pair in degrees.
type GeoLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite.
func (g GeoLocation) Valid() bool {
	return !math.IsNaN(g.Lat) && !math.IsInf(g.Lat, 0) &&
		!math.IsNaN(g.Lng) && !math.IsInf(g.Lng, 0)
}

// EncodedImage is a user-attached photo.
type EncodedImage struct {
	Base64   string `json:"base64"`
	MIMEType string `json:"mimeType"`
}

// DataURI renders the image as a data: URI suitable for a preview element.
func (i EncodedImage) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64
}

// Classification is the AI-derived interpretation of a report.
type Classification struct {
	Title    string        `json:"title"`
	Summary  string        `json:"summary"`
	Category EventCategory `json:"category"`
}

// EventReport is a user observation plus its classification. Reports are
// immutable once created.
type EventReport struct {
	ID              string         `json:"id"`
	UserDescription string         `json:"userDescription"`
	UserImage       *EncodedImage  `json:"userImage,omitempty"`
	Location        GeoLocation    `json:"location"`
	Timestamp       time.Time      `json:"timestamp"`
	AI              Classification `json:"ai"`
}

var (
	errMissingID          = errors.New("report id is empty")
	errMissingDescription = errors.New("report description is empty")
	errInvalidLocation    = errors.New("report location is not finite")
	errMissingTimestamp   = errors.New("report timestamp is zero")
	errIncompleteAI       = errors.New("report classification is incomplete")
)

// Validate checks the invariants every stored report must satisfy.
func (r EventReport) Validate() error {
	switch {
	case r.ID == "":
		return errMissingID
	case r.UserDescription == "":
		return errMissingDescription
	case !r.Location.Valid():
		return errInvalidLocation
	case r.Timestamp.IsZero():
		return errMissingTimestamp
	case r.AI.Title == "" || r.AI.Summary == "" || !r.AI.Category.Known():
		return errIncompleteAI
	}
	return nil
}

// Clone returns a copy that shares no memory with r.
func (r EventReport) Clone() EventReport {
	if r.UserImage != nil {
		img := *r.UserImage
		r.UserImage = &img
	}
	return r
}

var (
	mu     sync.Mutex
	clock  clockwork.Clock = clockwork.NewRealClock()
	lastID int64
)

// SetClock swaps the time source used to stamp new reports. Pass nil to reset
// to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	mu.Lock()
	clock = c
	mu.Unlock()
}

// NewEventReport builds a report stamped with the current time. The id is the
// creation time in Unix milliseconds, bumped when two reports share a
// millisecond.
func NewEventReport(description string, image *EncodedImage, location GeoLocation, ai Classification) EventReport {
	now, id := stamp()
	report := EventReport{
		ID:              id,
		UserDescription: description,
		Location:        location,
		Timestamp:       now,
		AI:              ai,
	}
	if image != nil {
		img := *image
		report.UserImage = &img
	}
	return report
}

func stamp() (time.Time, string) {
	mu.Lock()
	defer mu.Unlock()
	now := clock.Now().UTC()
	lastID = max(now.UnixMilli(), lastID+1)
	return now, strconv.FormatInt(lastID, 10)
}
