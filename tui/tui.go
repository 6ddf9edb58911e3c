// Package tui renders the live timer screen. It polls the engine once a
// second and drives it through single-key commands.
package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/radum/pontaj/engine"
	"github.com/radum/pontaj/internal/timeutil"
)

type keymap struct {
	pause  key.Binding
	resume key.Binding
	end    key.Binding
	quit   key.Binding
}

var defaultKeymap = keymap{
	pause: key.NewBinding(
		key.WithKeys("b", "p"),
		key.WithHelp("b", "break"),
	),
	resume: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resume"),
	),
	end: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "end session"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Styles groups the lipgloss styles used by the timer screen.
type Styles struct {
	Base      lipgloss.Style
	Clock     lipgloss.Style
	Work      lipgloss.Style
	Break     lipgloss.Style
	Cigarette lipgloss.Style
	Hint      lipgloss.Style
}

// DefaultStyles builds the style set for the given theme.
func DefaultStyles(darkTheme bool) Styles {
	hint := lipgloss.Color("240")
	if !darkTheme {
		hint = lipgloss.Color("245")
	}

	return Styles{
		Base:      lipgloss.NewStyle().Padding(1, 2),
		Clock:     lipgloss.NewStyle().Bold(true),
		Work:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Break:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Cigarette: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Hint:      lipgloss.NewStyle().Foreground(hint),
	}
}

// Options configures the timer screen.
type Options struct {
	Styles         Styles
	TwentyFourHour bool
	Debug          bool
}

type tickMsg time.Time

// Model is the bubbletea model for the live timer.
type Model struct {
	eng  *engine.Engine
	opts Options
	help help.Model
	quit bool
}

// New builds the timer screen on top of a loaded engine.
func New(eng *engine.Engine, opts Options) *Model {
	return &Model{
		eng:  eng,
		opts: opts,
		help: help.New(),
	}
}

// Run starts the interactive program and blocks until the user quits.
func Run(eng *engine.Engine, opts Options) error {
	_, err := tea.NewProgram(New(eng, opts)).Run()

	return err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.opts.Debug {
		slog.Debug(spew.Sdump(msg))
	}

	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, defaultKeymap.pause):
			m.eng.StartBreak()
			return m, nil

		case key.Matches(msg, defaultKeymap.resume):
			m.eng.ResumeWork()
			return m, nil

		case key.Matches(msg, defaultKeymap.end):
			m.eng.EndCurrent("")
			m.quit = true

			return m, tea.Batch(tea.ClearScreen, tea.Quit)

		case key.Matches(msg, defaultKeymap.quit):
			m.quit = true
			return m, tea.Batch(tea.ClearScreen, tea.Quit)
		}
	}

	return m, nil
}

func (m *Model) View() string {
	if m.quit {
		return ""
	}

	st := m.opts.Styles

	if !m.eng.IsRunning() && !m.eng.IsPaused() {
		return st.Base.Render(
			"No session is running.\n\n" +
				m.help.ShortHelpView([]key.Binding{
					defaultKeymap.quit,
				}),
		)
	}

	return st.Base.Render(m.sessionView())
}

func (m *Model) sessionView() string {
	st := m.opts.Styles

	header := st.Work.Render("[Work]")
	if m.eng.IsPaused() {
		if m.eng.OpenPauseMs() < engine.CigaretteThresholdMs() {
			header = st.Cigarette.Render("[Cigarette]")
		} else {
			header = st.Break.Render("[Break]")
		}
	}

	timeFormat := "03:04:05 PM"
	if m.opts.TwentyFourHour {
		timeFormat = "15:04:05"
	}

	started := ""
	if at := m.eng.ActiveStartedAt(); at != nil {
		started = " since " + timeutil.FromMs(*at).Format(timeFormat)
	}

	out := header + st.Hint.Render(started) + "\n\n"
	out += st.Clock.Render(timeutil.FormatMs(m.eng.TotalWorkMs())) + "\n\n"
	out += m.totalsLine() + "\n"

	if addr := m.eng.CurrentAddress(); addr != "" {
		out += st.Hint.Render("at "+addr) + "\n"
	}

	return out + "\n" + m.helpView()
}

func (m *Model) totalsLine() string {
	st := m.opts.Styles

	return st.Break.Render(
		"break "+timeutil.FormatMsShort(m.eng.TotalBreakMs()),
	) + "  " + st.Cigarette.Render(
		"cig "+timeutil.FormatMsShort(m.eng.TotalCigaretteMs()),
	)
}

func (m *Model) helpView() string {
	if m.eng.IsPaused() {
		return m.help.ShortHelpView([]key.Binding{
			defaultKeymap.resume,
			defaultKeymap.end,
			defaultKeymap.quit,
		})
	}

	return m.help.ShortHelpView([]key.Binding{
		defaultKeymap.pause,
		defaultKeymap.end,
		defaultKeymap.quit,
	})
}

var _ tea.Model = (*Model)(nil)
