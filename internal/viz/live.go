package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/airway/internal/airway"
	"github.com/san-kum/airway/internal/metrics"
	"github.com/san-kum/airway/internal/surface"
)

const (
	frameRate = 30
	// chromeRows is the space taken by the header, status and key lines.
	chromeRows  = 3
	flightSpeed = 0.6
	sparkWidth  = 24
)

type FrameMsg time.Time

// Model renders a pane and forwards terminal events to its airway.
type Model struct {
	airway  *airway.Airway
	pane    *surface.Pane
	stats   *metrics.Population
	flights *Flights

	width, rows int
	theme       Theme
	showHelp    bool
}

// NewModel builds the terminal host. stats may be nil.
func NewModel(a *airway.Airway, pane *surface.Pane, stats *metrics.Population) Model {
	return Model{
		airway:  a,
		pane:    pane,
		stats:   stats,
		flights: NewFlights(flightSpeed),
		width:   pane.Width(),
		theme:   ThemeCyberpunk,
	}
}

// WithTheme returns m using the named theme.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	return m
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return frame()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.airway.Close()
			return m, tea.Quit
		case " ":
			if m.airway.State() == airway.Idle {
				m.airway.Execute()
				m.fit()
			} else {
				m.airway.Dispose()
			}
		case "+", "=":
			m.resizeBy(airway.UnitFootprint)
		case "-", "_":
			m.resizeBy(-airway.UnitFootprint)
		case "c":
			m.pane.Clear()
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width, m.rows = msg.Width, msg.Height
		m.pane.SetWidth(msg.Width)
		m.fit()
	case FrameMsg:
		m.flights.Advance(m.pane.Units(), m.width)
		return m, frame()
	}
	return m, nil
}

// fit sizes a resizable pane to the space left by the chrome.
func (m *Model) fit() {
	if !m.pane.Style().Resizable || m.rows == 0 {
		return
	}
	m.pane.Resize(HeightFor(m.rows - chromeRows))
}

func (m *Model) resizeBy(delta int) {
	if !m.pane.Style().Resizable {
		return
	}
	h := m.pane.Height() + delta
	if h < 0 {
		h = 0
	}
	if limit := HeightFor(m.rows - chromeRows); m.rows > 0 && h > limit {
		h = limit
	}
	m.pane.Resize(h)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header() + "\n")
	b.WriteString(m.surfaceView())
	b.WriteString(m.status() + "\n")
	b.WriteString(KeyHint.Render("space:stop/start  +/-:resize  c:clear  t:theme  ?:help  q:quit"))

	if m.showHelp {
		return HelpBox.Render(helpText) + "\n" + b.String()
	}
	return b.String()
}

func (m Model) header() string {
	title := GradientText("airway", m.theme.Primary, m.theme.Accent)
	state := m.airway.State()
	stateStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Success)
	if state == airway.Saturated {
		stateStyle = stateStyle.Foreground(m.theme.Warning)
	} else if state == airway.Idle {
		stateStyle = stateStyle.Foreground(m.theme.Muted)
	}
	return title + "  " + stateStyle.Render(strings.ToUpper(state.String()))
}

func (m Model) surfaceView() string {
	style := m.pane.Style()
	units := m.pane.Units()
	m.flights.Sync(units, m.width)

	rows := RowsFor(m.pane.Height())
	if m.rows > 0 && rows > m.rows-chromeRows {
		rows = m.rows - chromeRows
	}
	if rows <= 0 || m.width <= 0 {
		return ""
	}

	bg := lipgloss.NewStyle()
	if c, ok := Color(style.Background); ok {
		bg = bg.Background(c)
	}
	left := bg.Foreground(colorOr(style.ColorFromLeft, lipgloss.Color("#0000ff")))
	right := bg.Foreground(colorOr(style.ColorFromRight, lipgloss.Color("#ff0000")))
	blank := bg.Render(strings.Repeat(" ", m.width))

	var b strings.Builder
	for r := 0; r < rows; r++ {
		lane := r / LaneRows
		if r%LaneRows != 0 || lane >= len(units) {
			b.WriteString(blank + "\n")
			continue
		}
		u := units[lane]
		lead, visible, trail := segments(m.width, m.flights.X(u.ID), glyphFor(u.Orientation))
		fg := left
		if u.Orientation == surface.FromRight {
			fg = right
		}
		b.WriteString(bg.Render(strings.Repeat(" ", lead)))
		b.WriteString(fg.Render(string(visible)))
		b.WriteString(bg.Render(strings.Repeat(" ", trail)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) status() string {
	units := len(m.pane.Units())
	capacity := airway.Capacity(m.pane.Height())

	parts := []string{
		MetricLabel.Render("airplanes ") + MetricValue.Render(fmt.Sprintf("%d/%d", units, capacity)),
		MetricLabel.Render("height ") + MetricValue.Render(fmt.Sprintf("%dpx", m.pane.Height())),
	}
	if m.stats != nil {
		s := m.stats.Summary()
		parts = append(parts,
			MetricLabel.Render("added ")+MetricValue.Render(fmt.Sprint(s.Added)),
			MetricLabel.Render("removed ")+MetricValue.Render(fmt.Sprint(s.Removed)),
			SparklineChart(m.stats.History(), sparkWidth, lipgloss.NewStyle().Foreground(m.theme.Accent)),
		)
	}
	return strings.Join(parts, "  ")
}

const helpText = `KEYBOARD SHORTCUTS

Space  - Stop / restart the airway
+ / -  - Grow / shrink by one lane
C      - Clear every airplane
T      - Cycle themes
?      - Toggle this help
Q      - Quit`

// Run executes the airway and hosts it until the user quits.
func Run(a *airway.Airway, pane *surface.Pane, stats *metrics.Population, theme string) error {
	a.Execute()
	p := tea.NewProgram(NewModel(a, pane, stats).WithTheme(theme), tea.WithAltScreen())
	_, err := p.Run()
	a.Close()
	return err
}
