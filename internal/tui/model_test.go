package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-pulse-service/internal/capability"
	"github.com/couchcryptid/city-pulse-service/internal/controller"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
	"github.com/couchcryptid/city-pulse-service/internal/render"
	"github.com/couchcryptid/city-pulse-service/internal/store"
)

type stubClassifier struct {
	result domain.Classification
	err    error
}

func (s *stubClassifier) Classify(context.Context, string, *domain.EncodedImage) (domain.Classification, error) {
	return s.result, s.err
}

var fallenTree = domain.Classification{
	Title:    "Fallen Tree on 100 Feet Road",
	Summary:  "A large tree is blocking one lane.",
	Category: domain.CategorySafetyHazard,
}

var renderOpts = render.Options{Bounds: domain.BengaluruBounds, Location: time.UTC}

// testModel builds a model over a real controller. With seed the store holds
// the four sample events.
func testModel(t *testing.T, seed bool, cls controller.Classifier) (Model, *controller.Controller) {
	t.Helper()
	events := store.New()
	if seed {
		require.NoError(t, events.Seed(domain.SampleEvents(time.Now())))
	}
	ctl := controller.New(events, cls, controller.WithMetrics(observability.NewMetricsForTesting()))
	model := NewModel(ctl, Options{Render: renderOpts})

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), ctl
}

func press(t *testing.T, model Model, message tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := model.Update(message)
	return updated.(Model), cmd
}

func typeText(t *testing.T, model Model, text string) Model {
	t.Helper()
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return model
}

// run executes an async command and feeds its result back into the model.
func run(t *testing.T, model Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	updated, _ := model.Update(cmd())
	return updated.(Model)
}

var (
	keyNew    = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}
	keyQuit   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	keyTab    = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter  = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc    = tea.KeyMsg{Type: tea.KeyEsc}
	keySubmit = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCtrlC  = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func TestModelView_Loading(t *testing.T) {
	ctl := controller.New(store.New(), &stubClassifier{})
	model := NewModel(ctl, Options{Render: renderOpts})
	assert.Equal(t, "Loading...", model.View())
}

func TestModelView_SampleFeed(t *testing.T) {
	model, _ := testModel(t, true, &stubClassifier{})

	view := model.View()
	assert.Contains(t, view, "City Pulse")
	assert.Contains(t, view, "Live Synthesized Events from Bengaluru")
	assert.Contains(t, view, "Heavy Traffic at Silk Board")
	assert.Contains(t, view, "n report event")
	assert.Len(t, model.view.Map.Markers, 4)
}

func TestModelView_EmptyState(t *testing.T) {
	model, _ := testModel(t, false, &stubClassifier{})
	assert.Contains(t, model.View(), "No events reported yet. Be the first!")
}

func TestModel_SubmitFlow(t *testing.T) {
	model, ctl := testModel(t, false, &stubClassifier{result: fallenTree})

	model, _ = press(t, model, keyNew)
	require.True(t, model.view.Modal.Visible)
	assert.Contains(t, model.View(), "Report an Event")

	model = typeText(t, model, "Tree fell near the bus stop")
	assert.Equal(t, "Tree fell near the bus stop", ctl.Snapshot().Draft.Description)

	model, _ = press(t, model, keyTab)
	model, _ = press(t, model, keyTab)
	require.Equal(t, fieldLocation, model.focus)
	model = typeText(t, model, "12.9716, 77.6412")

	model, cmd := press(t, model, keyEnter)
	model = run(t, model, cmd)
	assert.Equal(t, controller.LocationCaptured, model.view.Modal.Location.State)

	model, cmd = press(t, model, keySubmit)
	model = run(t, model, cmd)

	assert.False(t, model.view.Modal.Visible)
	assert.False(t, model.view.Feed.Empty)
	require.Len(t, model.view.Feed.Cards, 1)
	assert.Equal(t, fallenTree.Title, model.view.Feed.Cards[0].Title)
	require.Len(t, model.view.Map.Markers, 1)
	require.NotNil(t, model.view.Toast)
	assert.Equal(t, "Report submitted: "+fallenTree.Title, model.view.Toast.Message)
	assert.Empty(t, model.fields[fieldDescription].Value(), "fields reset after success")
}

func TestModel_SubmitPrependsToSeededFeed(t *testing.T) {
	model, _ := testModel(t, true, &stubClassifier{result: fallenTree})

	model, _ = press(t, model, keyNew)
	model = typeText(t, model, "Tree down")
	model.fields[fieldLocation].SetValue("12.97,77.59")
	model.focus = fieldLocation
	model, cmd := press(t, model, keyEnter)
	model = run(t, model, cmd)
	model, cmd = press(t, model, keySubmit)
	model = run(t, model, cmd)

	require.Len(t, model.view.Feed.Cards, 5)
	assert.Equal(t, fallenTree.Title, model.view.Feed.Cards[0].Title)
	assert.Equal(t, "Heavy Traffic at Silk Board", model.view.Feed.Cards[1].Title)
}

func TestModel_SubmitWithoutLocation(t *testing.T) {
	model, ctl := testModel(t, false, &stubClassifier{result: fallenTree})

	model, _ = press(t, model, keyNew)
	model = typeText(t, model, "Pothole")
	model, cmd := press(t, model, keySubmit)
	model = run(t, model, cmd)

	assert.True(t, model.view.Modal.Visible, "modal stays open")
	require.NotNil(t, model.view.Toast)
	assert.Equal(t, controller.MessageValidation, model.view.Toast.Message)
	assert.Equal(t, controller.Composing, ctl.Snapshot().State)
	assert.True(t, model.view.Feed.Empty)
}

func TestModel_ClassificationFailureKeepsDraft(t *testing.T) {
	model, ctl := testModel(t, false, &stubClassifier{err: context.DeadlineExceeded})

	model, _ = press(t, model, keyNew)
	model = typeText(t, model, "Flooding")
	model.fields[fieldLocation].SetValue("12.97,77.59")
	model.focus = fieldLocation
	model, cmd := press(t, model, keyEnter)
	model = run(t, model, cmd)
	model, cmd = press(t, model, keySubmit)
	model = run(t, model, cmd)

	assert.True(t, model.view.Modal.Visible)
	assert.NotEmpty(t, model.view.Modal.Error)
	assert.Equal(t, "Flooding", ctl.Snapshot().Draft.Description)
	assert.Equal(t, "Flooding", model.fields[fieldDescription].Value())
	assert.True(t, model.view.Feed.Empty)
}

func TestModel_AttachMissingImage(t *testing.T) {
	model, _ := testModel(t, false, &stubClassifier{})

	model, _ = press(t, model, keyNew)
	model, _ = press(t, model, keyTab)
	require.Equal(t, fieldImage, model.focus)
	model = typeText(t, model, "/nonexistent/photo.jpg")

	model, cmd := press(t, model, keyEnter)
	model = run(t, model, cmd)

	assert.Equal(t, controller.ImageFailed, model.view.Modal.ImageState)
	require.NotNil(t, model.view.Toast)
	assert.Equal(t, controller.MessageImageFailed, model.view.Toast.Message)
}

func TestModel_Close(t *testing.T) {
	model, ctl := testModel(t, true, &stubClassifier{})

	model, _ = press(t, model, keyNew)
	model = typeText(t, model, "never mind")
	model, _ = press(t, model, keyEsc)

	assert.False(t, model.view.Modal.Visible)
	assert.Equal(t, controller.Idle, ctl.Snapshot().State)
	assert.Empty(t, ctl.Snapshot().Draft.Description)
	assert.Len(t, model.view.Feed.Cards, 4)
}

func TestModel_Quit(t *testing.T) {
	model, _ := testModel(t, false, &stubClassifier{})

	_, cmd := press(t, model, keyQuit)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_QKeyTypesInsideModal(t *testing.T) {
	model, ctl := testModel(t, false, &stubClassifier{})

	model, _ = press(t, model, keyNew)
	model, _ = press(t, model, keyQuit)
	assert.True(t, model.view.Modal.Visible)
	assert.Equal(t, "q", ctl.Snapshot().Draft.Description)

	_, cmd := press(t, model, keyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_TickExpiresToast(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctl := controller.New(store.New(), &stubClassifier{},
		controller.WithClock(clock),
		controller.WithMetrics(observability.NewMetricsForTesting()),
	)
	model := NewModel(ctl, Options{Render: renderOpts})
	model, _ = press(t, model, keyNew)
	model, cmd := press(t, model, keySubmit)
	model = run(t, model, cmd)
	require.NotNil(t, model.view.Toast)

	clock.Advance(5 * time.Second)
	updated, next := model.Update(tickMsg(time.Now()))
	model = updated.(Model)
	assert.Nil(t, model.view.Toast)
	assert.NotNil(t, next, "tick reschedules itself")
}

func TestModelHelp_SwitchesWithModal(t *testing.T) {
	model, _ := testModel(t, false, &stubClassifier{})
	assert.Contains(t, model.renderHelp(), "q quit")

	model, _ = press(t, model, keyNew)
	help := model.renderHelp()
	assert.Contains(t, help, "C-s submit")
	assert.False(t, strings.Contains(help, "q quit"))
}

func TestPlot(t *testing.T) {
	markers := []render.Marker{
		{ID: "marker-new", Top: 0, Left: 0, Icon: render.IconTraffic},
		{ID: "marker-old", Top: 0, Left: 0, Icon: render.IconOther},
		{ID: "marker-corner", Top: 100, Left: 100, Icon: render.IconSafetyHazard},
	}

	cells := plot(markers, 10, 5)
	require.Len(t, cells, 2)
	assert.Equal(t, render.IconTraffic, cells[[2]int{0, 0}].icon, "newest marker wins a shared cell")
	assert.Equal(t, render.IconSafetyHazard, cells[[2]int{4, 9}].icon)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		input    string
		lat, lng float64
		ok       bool
	}{
		{"12.97,77.59", 12.97, 77.59, true},
		{" 12.97 , 77.59 ", 12.97, 77.59, true},
		{"-33.8,151.2", -33.8, 151.2, true},
		{"MG Road", 0, 0, false},
		{"12.97", 0, 0, false},
		{"Church Street, Bengaluru", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lat, lng, ok := parseCoordinates(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.lat, lat, 1e-9)
			assert.InDelta(t, tt.lng, lng, 1e-9)
		})
	}
}

func TestLocationSource(t *testing.T) {
	assert.IsType(t, capability.Coordinates{}, locationSource("12.97,77.59", nil))
	assert.IsType(t, capability.AddressLookup{}, locationSource("Indiranagar", nil))
}
