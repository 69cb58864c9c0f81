package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#6C50FF")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C50FF")).
			Bold(true)
)

// meterRefresh is the meter redraw period, roughly 30 fps.
const meterRefresh = 33 * time.Millisecond

// MeterModel is the Bubble Tea model for the live intensity meter. It
// polls a read function on a ticker; the function is expected to be a
// cheap atomic read.
type MeterModel struct {
	title     string
	intensity func() float64
	state     func() string
	bar       progress.Model
	current   float64
	width     int
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(meterRefresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// NewMeterModel creates a meter reading intensity and state through
// the given functions.
func NewMeterModel(title string, intensity func() float64, state func() string) MeterModel {
	bar := progress.New(
		progress.WithGradient("#3A2A9B", "#6C50FF"),
		progress.WithoutPercentage(),
	)
	return MeterModel{
		title:     title,
		intensity: intensity,
		state:     state,
		bar:       bar,
	}
}

// Init starts the refresh ticker.
func (m MeterModel) Init() tea.Cmd {
	return tick()
}

func (m MeterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 4
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}

	case tickMsg:
		m.current = m.intensity()
		return m, tick()

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the title, the bar and the numeric readout.
func (m MeterModel) View() string {
	title := titleStyle.Render(m.title)
	state := ""
	if m.state != nil {
		state = infoStyle.Render(fmt.Sprintf("state: %s", m.state()))
	}
	readout := valueStyle.Render(fmt.Sprintf("%.3f", m.current))
	help := infoStyle.Render("q: Quit")

	return fmt.Sprintf("%s  %s\n\n%s  %s\n\n%s\n",
		title, state, m.bar.ViewAs(m.current), readout, help)
}

// StartMeterUI runs the meter until the user quits.
func StartMeterUI(title string, intensity func() float64, state func() string) error {
	p := tea.NewProgram(NewMeterModel(title, intensity, state))
	_, err := p.Run()
	return err
}
