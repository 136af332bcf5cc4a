package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/city-pulse-service/internal/capability"
	"github.com/couchcryptid/city-pulse-service/internal/controller"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/render"
)

// refreshInterval is how often the model re-reads controller state so that
// pending lookups, the submitting state, and toast expiry show up.
const refreshInterval = 200 * time.Millisecond

// Feed cards take four lines each: title, summary, footer, gap.
const cardLines = 4

// Controller is the part of the submission controller the TUI drives.
type Controller interface {
	Open() controller.Snapshot
	Cancel(via controller.CancelVia) error
	SetDescription(text string) error
	AttachImage(ctx context.Context, src domain.ImageSource) error
	AcquireLocation(ctx context.Context, src domain.LocationSource) error
	Submit(ctx context.Context) (domain.EventReport, error)
	Snapshot() controller.Snapshot
	Events() []domain.EventReport
}

// Options configures a Model.
type Options struct {
	Render   render.Options
	Geocoder domain.Geocoder // nil disables address lookup
	Logger   *slog.Logger
}

// Modal input fields in tab order.
const (
	fieldDescription = iota
	fieldImage
	fieldLocation
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldDescription: "Description",
	fieldImage:       "Image file",
	fieldLocation:    "Location",
}

type (
	tickMsg           time.Time
	imageResultMsg    struct{ err error }
	locationResultMsg struct{ err error }
	submitResultMsg   struct {
		report domain.EventReport
		err    error
	}
)

// Model is the bubbletea model for the City Pulse TUI.
type Model struct {
	ctl    Controller
	opts   Options
	keys   KeyMap
	theme  Theme
	logger *slog.Logger

	view   render.ViewModel
	fields [fieldCount]textinput.Model
	focus  int

	width  int
	height int
}

// NewModel builds a model over ctl showing the current store contents.
func NewModel(ctl Controller, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	model := Model{
		ctl:    ctl,
		opts:   opts,
		keys:   DefaultKeyMap,
		theme:  DefaultTheme,
		logger: logger,
		view:   render.Render(ctl.Events(), ctl.Snapshot(), opts.Render),
	}
	placeholders := [fieldCount]string{
		fieldDescription: "What's happening?",
		fieldImage:       "path/to/photo.jpg (Enter to attach)",
		fieldLocation:    "12.9716, 77.5946 or an address (Enter to locate)",
	}
	for i := range model.fields {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = placeholders[i]
		model.fields[i] = input
	}
	return model
}

func (model Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case tickMsg:
		model.sync()
		return model, tick()

	case imageResultMsg:
		model.logResult("image attachment", message.err)
		model.sync()
		return model, nil

	case locationResultMsg:
		model.logResult("location lookup", message.err)
		model.sync()
		return model, nil

	case submitResultMsg:
		model.logResult("submission", message.err)
		if message.err == nil {
			delta := render.Added(message.report, len(model.ctl.Events()), model.opts.Render)
			model.view = render.Apply(model.view, delta)
			model.resetFields()
		}
		model.sync()
		return model, nil

	case tea.KeyMsg:
		if key.Matches(message, model.keys.ForceQuit) {
			return model, tea.Quit
		}
		if model.view.Modal.Visible {
			return model.handleModalKeys(message)
		}
		return model.handleFeedKeys(message)
	}

	if model.view.Modal.Visible {
		var cmd tea.Cmd
		model.fields[model.focus], cmd = model.fields[model.focus].Update(message)
		return model, cmd
	}
	return model, nil
}

func (model Model) handleFeedKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.NewReport):
		model.ctl.Open()
		model.resetFields()
		model.sync()
		cmd := model.setFocus(fieldDescription)
		return model, cmd
	}
	return model, nil
}

func (model Model) handleModalKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Close):
		if err := model.ctl.Cancel(controller.CloseButton); err != nil {
			model.logger.Debug("cancel refused", "error", err)
		}
		model.resetFields()
		model.sync()
		return model, nil

	case key.Matches(message, model.keys.NextField):
		cmd := model.setFocus((model.focus + 1) % fieldCount)
		return model, cmd

	case key.Matches(message, model.keys.PrevField):
		cmd := model.setFocus((model.focus + fieldCount - 1) % fieldCount)
		return model, cmd

	case key.Matches(message, model.keys.Submit):
		if model.view.Modal.Submit.Disabled {
			return model, nil
		}
		return model, submitCmd(model.ctl)

	case key.Matches(message, model.keys.Apply):
		switch model.focus {
		case fieldImage:
			path := strings.TrimSpace(model.fields[fieldImage].Value())
			return model, attachCmd(model.ctl, capability.ImageFile{Path: path})
		case fieldLocation:
			src := locationSource(model.fields[fieldLocation].Value(), model.opts.Geocoder)
			return model, locateCmd(model.ctl, src)
		}
		cmd := model.setFocus(model.focus + 1)
		return model, cmd
	}

	var cmd tea.Cmd
	model.fields[model.focus], cmd = model.fields[model.focus].Update(message)
	if model.focus == fieldDescription {
		if err := model.ctl.SetDescription(model.fields[fieldDescription].Value()); err != nil {
			model.fields[fieldDescription].SetValue(model.ctl.Snapshot().Draft.Description)
		}
	}
	return model, cmd
}

func attachCmd(ctl Controller, src domain.ImageSource) tea.Cmd {
	return func() tea.Msg {
		return imageResultMsg{err: ctl.AttachImage(context.Background(), src)}
	}
}

func locateCmd(ctl Controller, src domain.LocationSource) tea.Cmd {
	return func() tea.Msg {
		return locationResultMsg{err: ctl.AcquireLocation(context.Background(), src)}
	}
}

func submitCmd(ctl Controller) tea.Cmd {
	return func() tea.Msg {
		report, err := ctl.Submit(context.Background())
		return submitResultMsg{report: report, err: err}
	}
}

// sync refreshes the modal and toast from the controller. The feed and map
// change only through render.Apply.
func (model *Model) sync() {
	fresh := render.Render(nil, model.ctl.Snapshot(), model.opts.Render)
	model.view.Modal = fresh.Modal
	model.view.Toast = fresh.Toast
}

func (model *Model) setFocus(field int) tea.Cmd {
	model.focus = field
	var cmd tea.Cmd
	for i := range model.fields {
		if i == field {
			cmd = model.fields[i].Focus()
			continue
		}
		model.fields[i].Blur()
	}
	return cmd
}

func (model *Model) resetFields() {
	for i := range model.fields {
		model.fields[i].Reset()
		model.fields[i].Blur()
	}
	model.focus = fieldDescription
}

// logResult records failed async operations. Discarded results are expected
// after a cancel or a newer selection.
func (model Model) logResult(operation string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, controller.ErrAbandoned), errors.Is(err, controller.ErrSuperseded):
		model.logger.Debug(operation+" discarded", "error", err)
	default:
		model.logger.Warn(operation+" failed", "error", err)
	}
}

func (model Model) View() string {
	if model.width == 0 {
		return "Loading..."
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(model.view.Header.Title),
		lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(model.view.Header.Subtitle),
	)

	var body string
	switch {
	case model.view.Modal.Visible:
		body = model.renderModal()
	case model.width >= 100:
		body = lipgloss.JoinHorizontal(lipgloss.Top, model.renderFeed(model.width-mapColumns-4), "  ", model.renderMap())
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, model.renderFeed(model.width), model.renderMap())
	}

	sections := []string{header, "", body}
	if toast := model.renderToast(); toast != "" {
		sections = append(sections, "", toast)
	}
	sections = append(sections, "", model.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (model Model) renderFeed(width int) string {
	feed := model.view.Feed
	if feed.Empty {
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Italic(true).Render(feed.EmptyMessage)
	}

	visible := max(1, (model.height-8)/cardLines)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.NormalText)
	summaryStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText).Width(width).MaxHeight(1)
	footerStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var lines []string
	for i, card := range feed.Cards {
		if i == visible {
			lines = append(lines, footerStyle.Render(fmt.Sprintf("+%d more", len(feed.Cards)-visible)))
			break
		}
		icon := lipgloss.NewStyle().Foreground(model.theme.CategoryColor(card.Icon)).Bold(true).Render(string(glyph(card.Icon)))
		title := icon + " " + titleStyle.Render(card.Title)
		if card.HasImage {
			title += footerStyle.Render(" [photo]")
		}
		lines = append(lines, title, summaryStyle.Render(card.Summary), footerStyle.Render(card.Footer), "")
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (model Model) renderModal() string {
	modal := model.view.Modal
	labelStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	focusStyle := lipgloss.NewStyle().Foreground(model.theme.FocusBorder).Bold(true)

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(modal.Title), ""}
	for i := range model.fields {
		label := labelStyle.Render(fieldLabels[i] + ":")
		if i == model.focus {
			label = focusStyle.Render(fieldLabels[i] + ":")
		}
		lines = append(lines, label, "  "+model.fields[i].View())
		switch i {
		case fieldImage:
			lines = append(lines, labelStyle.Render("  "+imageStatus(modal.ImageState)))
		case fieldLocation:
			lines = append(lines, labelStyle.Render("  "+modal.Location.Text))
		}
	}
	if modal.Error != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(model.theme.ToastError).Render(modal.Error))
	}

	button := lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.NormalBorder())
	if modal.Submit.Disabled {
		button = button.Foreground(model.theme.FaintText).BorderForeground(model.theme.BorderColor)
	} else {
		button = button.Foreground(model.theme.ToastSuccess).BorderForeground(model.theme.ToastSuccess)
	}
	lines = append(lines, "", button.Render(modal.Submit.Label))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.FocusBorder).
		Padding(0, 1).
		Width(min(72, max(40, model.width-4))).
		Render(strings.Join(lines, "\n"))
}

func imageStatus(state controller.ImageState) string {
	switch state {
	case controller.ImagePending:
		return "Reading image..."
	case controller.ImageAttached:
		return "Image attached."
	case controller.ImageFailed:
		return "Image could not be read."
	}
	return "No image attached."
}

func (model Model) renderToast() string {
	toast := model.view.Toast
	if toast == nil {
		return ""
	}
	color := model.theme.ToastSuccess
	if toast.Kind == controller.ToastError {
		color = model.theme.ToastError
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(toast.Message)
}

func (model Model) renderHelp() string {
	bindings := []key.Binding{model.keys.NewReport, model.keys.Quit}
	if model.view.Modal.Visible {
		bindings = []key.Binding{model.keys.NextField, model.keys.Apply, model.keys.Submit, model.keys.Close}
	}
	parts := make([]string, len(bindings))
	for i, binding := range bindings {
		help := binding.Help()
		parts[i] = help.Key + " " + help.Desc
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(strings.Join(parts, "  "))
}
