package render

import (
	"time"

	"github.com/couchcryptid/city-pulse-service/internal/controller"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// Render builds the full view model. It reads its inputs and never mutates
// them.
func Render(reports []domain.EventReport, snap controller.Snapshot, opts Options) ViewModel {
	vm := ViewModel{
		Header: Header{Title: HeaderTitle, Subtitle: HeaderSubtitle},
		Feed:   Feed{Cards: make([]Card, 0, len(reports))},
		Map:    Map{Bounds: opts.Bounds, Markers: make([]Marker, 0, len(reports))},
		Modal:  modal(snap),
	}

	if len(reports) == 0 {
		vm.Feed.Empty = true
		vm.Feed.EmptyMessage = EmptyMessage
	}
	for _, r := range reports {
		vm.Feed.Cards = append(vm.Feed.Cards, card(r, opts))
		if m, ok := marker(r, opts); ok {
			vm.Map.Markers = append(vm.Map.Markers, m)
		}
	}

	if snap.Toast != nil {
		t := *snap.Toast
		vm.Toast = &t
	}
	return vm
}

// Added describes the update for a report just prepended to the store.
// storeLen is the store length after the insert.
func Added(report domain.EventReport, storeLen int, opts Options) Delta {
	d := Delta{
		Card:             card(report, opts),
		ClearsEmptyState: storeLen == 1,
	}
	if m, ok := marker(report, opts); ok {
		d.Marker = &m
	}
	return d
}

// Apply folds a delta into an existing view model: the card goes to the
// head of the feed and the marker, if any, to the head of the overlay, so the
// result lists both newest first like Render.
func Apply(vm ViewModel, d Delta) ViewModel {
	cards := make([]Card, 0, len(vm.Feed.Cards)+1)
	cards = append(cards, d.Card)
	vm.Feed.Cards = append(cards, vm.Feed.Cards...)
	vm.Feed.Empty = false
	vm.Feed.EmptyMessage = ""

	if d.Marker != nil {
		markers := make([]Marker, 0, len(vm.Map.Markers)+1)
		markers = append(markers, *d.Marker)
		vm.Map.Markers = append(markers, vm.Map.Markers...)
	}
	return vm
}

func card(r domain.EventReport, opts Options) Card {
	return Card{
		ID:        "event-" + r.ID,
		EventID:   r.ID,
		Title:     r.AI.Title,
		Summary:   r.AI.Summary,
		Category:  string(r.AI.Category),
		Icon:      Icon(r.AI.Category),
		Footer:    string(r.AI.Category) + " • " + LocalTime(r.Timestamp, opts.Location),
		Timestamp: r.Timestamp,
		HasImage:  r.UserImage != nil,
	}
}

func marker(r domain.EventReport, opts Options) (Marker, bool) {
	pos, ok := opts.Bounds.Project(r.Location)
	if !ok {
		return Marker{}, false
	}
	return Marker{
		ID:       "marker-" + r.ID,
		EventID:  r.ID,
		Top:      pos.Top,
		Left:     pos.Left,
		Title:    r.AI.Title,
		Category: string(r.AI.Category),
		Icon:     Icon(r.AI.Category),
	}, true
}

func modal(snap controller.Snapshot) Modal {
	m := Modal{
		Visible:     snap.ModalOpen,
		Title:       ModalTitle,
		Description: snap.Draft.Description,
		ImageState:  snap.Image,
		Location:    snap.Location,
		Error:       snap.Error,
		Submit: SubmitButton{
			Disabled: snap.Submitting,
			Loading:  snap.Submitting,
			Label:    SubmitLabel,
		},
	}
	if snap.Submitting {
		m.Submit.Label = SubmittingLabel
	}
	if snap.Draft.Image != nil {
		m.ImagePreview = snap.Draft.Image.DataURI()
	}
	return m
}

// LocalTime formats t in loc for card footers.
func LocalTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimeLayout)
}
