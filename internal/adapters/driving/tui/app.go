package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// ViewType identifies the active screen.
type ViewType int

// Screens of the browser.
const (
	ViewLookup ViewType = iota
	ViewAgencies
	ViewRecord
)

// agenciesLoaded carries the agencies found for an id.
type agenciesLoaded struct {
	id       string
	agencies []int
	err      error
}

// recordLoaded carries a fetched record and its relations.
type recordLoaded struct {
	record    *driving.RecordView
	relations *driving.RelationsView
	err       error
}

// App is the record browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	input  textinput.Model

	currentView ViewType

	id       string
	agencies []int
	selected int

	record    *driving.RecordView
	relations *driving.RelationsView
	offset    int

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new browser with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Placeholder = "Bibliographic record id..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      styles.DefaultStyles(),
		keys:        keymap.DefaultKeyMap(),
		input:       ti,
		currentView: ViewLookup,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("rawrepo - Record Browser"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case agenciesLoaded:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		if len(msg.agencies) == 0 {
			a.err = fmt.Errorf("no records for id %s", msg.id)
			return a, nil
		}
		a.err = nil
		a.id = msg.id
		a.agencies = msg.agencies
		a.selected = 0
		a.currentView = ViewAgencies
		a.input.Blur()
		return a, nil

	case recordLoaded:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.record = msg.record
		a.relations = msg.relations
		a.offset = 0
		a.currentView = ViewRecord
		return a, nil
	}

	if a.currentView == ViewLookup {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	switch a.currentView {
	case ViewLookup:
		switch {
		case keymap.Matches(k, a.keys.Back):
			return a, tea.Quit
		case keymap.Matches(k, a.keys.Lookup):
			id := strings.TrimSpace(a.input.Value())
			if id == "" {
				return a, nil
			}
			return a, a.loadAgencies(id)
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case ViewAgencies:
		switch {
		case keymap.Matches(k, a.keys.Quit):
			return a, tea.Quit
		case keymap.Matches(k, a.keys.Back):
			a.currentView = ViewLookup
			a.err = nil
			return a, a.input.Focus()
		case keymap.Matches(k, a.keys.Up):
			if a.selected > 0 {
				a.selected--
			}
		case keymap.Matches(k, a.keys.Down):
			if a.selected < len(a.agencies)-1 {
				a.selected++
			}
		case keymap.Matches(k, a.keys.Select):
			return a, a.loadRecord(domain.NewRecordID(a.id, a.agencies[a.selected]))
		}
		return a, nil

	case ViewRecord:
		switch {
		case keymap.Matches(k, a.keys.Quit):
			return a, tea.Quit
		case keymap.Matches(k, a.keys.Back):
			a.currentView = ViewAgencies
			a.err = nil
		case keymap.Matches(k, a.keys.Up):
			if a.offset > 0 {
				a.offset--
			}
		case keymap.Matches(k, a.keys.Down):
			if a.offset < len(a.recordLines())-1 {
				a.offset++
			}
		}
		return a, nil
	}
	return a, nil
}

func (a *App) loadAgencies(id string) tea.Cmd {
	ctx, records := a.ctx, a.ports.Records
	return func() tea.Msg {
		agencies, err := records.Agencies(ctx, id)
		return agenciesLoaded{id: id, agencies: agencies, err: err}
	}
}

func (a *App) loadRecord(id domain.RecordID) tea.Cmd {
	ctx, records := a.ctx, a.ports.Records
	return func() tea.Msg {
		rec, err := records.Get(ctx, id)
		if err != nil {
			return recordLoaded{err: err}
		}
		relations, err := records.Relations(ctx, id)
		return recordLoaded{record: rec, relations: relations, err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	var help []key.Binding
	switch a.currentView {
	case ViewAgencies:
		body, help = a.viewAgencies(), a.keys.ListHelp()
	case ViewRecord:
		body, help = a.viewRecord(), a.keys.RecordHelp()
	default:
		body, help = a.viewLookup(), a.keys.LookupHelp()
	}

	parts := []string{a.styles.Title.Render("rawrepo"), "", body}
	if a.err != nil {
		parts = append(parts, "", a.styles.Error.Render("Error: "+a.err.Error()))
	}
	parts = append(parts, "", a.renderHelp(help))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) viewLookup() string {
	label := a.styles.Subtitle.Render("Record id: ")
	return lipgloss.JoinHorizontal(lipgloss.Center, label, a.styles.InputField.Render(a.input.View()))
}

func (a *App) viewAgencies() string {
	lines := []string{a.styles.Subtitle.Render("Agencies for " + a.id)}
	for i, agencyID := range a.agencies {
		label := fmt.Sprintf("%d", agencyID)
		if agencyID == domain.CommonAgency {
			label += " (common)"
		}
		if i == a.selected {
			lines = append(lines, a.styles.Selected.Render("> "+label))
		} else {
			lines = append(lines, a.styles.Normal.Render("  "+label))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) viewRecord() string {
	lines := a.recordLines()
	visible := lines[a.offset:]
	if limit := a.height - 8; limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	return strings.Join(visible, "\n")
}

// recordLines renders the record header, fields and relations.
func (a *App) recordLines() []string {
	if a.record == nil {
		return []string{""}
	}
	rec := a.record.Record

	header := fmt.Sprintf("%s  %s  %s", rec.ID, a.record.Type, rec.MimeType)
	lines := []string{a.styles.Subtitle.Render(header)}
	if rec.Deleted {
		lines = append(lines, a.styles.Deleted.Render("deleted"))
	}
	lines = append(lines, a.styles.Muted.Render("modified "+rec.Modified.Format("2006-01-02 15:04:05")), "")

	if a.record.Marc.IsEmpty() {
		lines = append(lines, a.styles.Muted.Render("(no content)"))
	}
	if a.record.Marc != nil {
		for _, f := range a.record.Marc.Fields {
			rest := strings.TrimPrefix(f.String(), f.Name)
			lines = append(lines, a.styles.Tag.Render(f.Name)+a.styles.Normal.Render(rest))
		}
	}

	if a.relations != nil {
		lines = append(lines, "")
		lines = append(lines, a.relationLines("Points at", a.relations.From)...)
		lines = append(lines, a.relationLines("Children", a.relations.Children)...)
		lines = append(lines, a.relationLines("Enrichments", a.relations.Siblings)...)
	}
	return lines
}

func (a *App) relationLines(label string, ids []domain.RecordID) []string {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	return []string{a.styles.Muted.Render(label+": ") + a.styles.Normal.Render(strings.Join(keys, " "))}
}

func (a *App) renderHelp(bindings []key.Binding) string {
	items := make([]string, len(bindings))
	for i, b := range bindings {
		items[i] = b.Help().Key + " " + b.Help().Desc
	}
	return a.styles.Help.Render(strings.Join(items, "  •  "))
}

// Run starts the browser.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active screen.
func (a *App) CurrentView() ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	if w := width - 20; w > 20 {
		a.input.Width = w
	}
}
