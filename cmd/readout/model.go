package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kass/go-geo-utm/pkg/mapview"
	"github.com/kass/go-geo-utm/pkg/utm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 2).
			Width(30)

	clickedStyle = panelStyle.
			BorderForeground(lipgloss.Color("#50FA7B"))
)

// pixels moved per arrow key press
const stepPixels = 10

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Click   key.Binding
	Base    key.Binding
	Overlay key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Click, k.Base, k.Overlay, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Click},
		{k.Base, k.Overlay, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "north")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "south")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "west")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "east")),
	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	Click:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "click")),
	Base:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "next base layer")),
	Overlay: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "toggle overlays")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// model drives a mapview.Controller from the keyboard: the cursor stands in
// for the mouse pointer and enter for a click.
type model struct {
	ctrl    *mapview.Controller
	cursor  utm.GeodeticCoordinate
	moved   mapview.Readout
	clicked *mapview.Readout
	err     error
	help    help.Model
	width   int
}

func newModel(ctrl *mapview.Controller) model {
	state := ctrl.State()
	m := model{
		ctrl:   ctrl,
		cursor: state.Center,
		help:   help.New(),
		width:  80,
	}
	m.moved = ctrl.PointerMoved(m.cursor.Latitude, m.cursor.Longitude)
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

// degreesPerPixel is the web mercator ground resolution at zoom, in degrees
// of longitude.
func degreesPerPixel(zoom int) float64 {
	return 360 / (256 * math.Pow(2, float64(zoom)))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		state := m.ctrl.State()
		step := stepPixels * degreesPerPixel(state.Zoom)

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, keys.Up):
			m.move(step, 0)
		case key.Matches(msg, keys.Down):
			m.move(-step, 0)
		case key.Matches(msg, keys.Left):
			m.move(0, -step)
		case key.Matches(msg, keys.Right):
			m.move(0, step)
		case key.Matches(msg, keys.ZoomIn):
			m.err = m.ctrl.SetView(m.cursor, state.Zoom+1)
		case key.Matches(msg, keys.ZoomOut):
			if state.Zoom > 0 {
				m.err = m.ctrl.SetView(m.cursor, state.Zoom-1)
			}
		case key.Matches(msg, keys.Click):
			r := m.ctrl.Clicked(m.cursor.Latitude, m.cursor.Longitude)
			m.clicked = &r
		case key.Matches(msg, keys.Base):
			m.err = m.ctrl.SelectBaseLayer(nextBase(m.ctrl.Layers(), state.Base))
		case key.Matches(msg, keys.Overlay):
			for id, visible := range state.Overlays {
				if err := m.ctrl.SetOverlayVisible(id, !visible); err != nil {
					m.err = err
				}
			}
		}
	}
	return m, nil
}

// move shifts the cursor and reports it as a pointer move. Positions the
// projector cannot handle are left out.
func (m *model) move(dLat, dLng float64) {
	next := utm.GeodeticCoordinate{
		Latitude:  m.cursor.Latitude + dLat,
		Longitude: m.cursor.Longitude + dLng,
	}
	if err := utm.CheckCoordinate(next.Latitude, next.Longitude); err != nil {
		m.err = err
		return
	}
	m.cursor = next
	m.moved = m.ctrl.PointerMoved(next.Latitude, next.Longitude)
}

// nextBase returns the base layer after current, wrapping around.
func nextBase(layers []mapview.Layer, current string) string {
	var bases []string
	for _, l := range layers {
		if l.Kind == mapview.KindBase {
			bases = append(bases, l.ID)
		}
	}
	for i, id := range bases {
		if id == current {
			return bases[(i+1)%len(bases)]
		}
	}
	return current
}

func (m model) View() string {
	var b strings.Builder
	state := m.ctrl.State()

	b.WriteString(titleStyle.Render(fmt.Sprintf("UTM %s readout", state.Zone)))
	b.WriteString("\n")

	panels := []string{
		panelStyle.Render(m.moved.GeodeticText),
		panelStyle.Render(m.moved.ProjectedText),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")

	if m.clicked != nil {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			clickedStyle.Render(m.clicked.GeodeticText),
			clickedStyle.Render(m.clicked.ProjectedText),
		))
		b.WriteString("\n")
	}

	b.WriteString(subtitleStyle.Render("Layers"))
	b.WriteString("\n")
	for _, l := range m.ctrl.Layers() {
		mark := "[ ]"
		switch {
		case l.Kind == mapview.KindBase && l.ID == state.Base:
			mark = "(*)"
		case l.Kind == mapview.KindBase:
			mark = "( )"
		case state.Overlays[l.ID]:
			mark = "[x]"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", mark, l.Name))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("zoom %d", state.Zoom)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}
