// Package tui is a bubbletea front end for view.Controller.
//
// The bubbletea program owns the terminal and runs on the main goroutine;
// the controller runs elsewhere and talks to it through View. Key presses are
// queued until the controller drains them, frames are sent as messages.
package tui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/brensch/gridsnakes/rules"
	"github.com/brensch/gridsnakes/view"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type frameMsg view.Frame

type finishedMsg struct{}

// inbox buffers key presses between ticks.
type inbox struct {
	mu      sync.Mutex
	pending []view.UserAction
}

func (in *inbox) push(a view.UserAction) {
	in.mu.Lock()
	in.pending = append(in.pending, a)
	in.mu.Unlock()
}

func (in *inbox) drain() []view.UserAction {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.pending
	in.pending = nil
	return out
}

type styles struct {
	players []lipgloss.Style
	food    lipgloss.Style
	stone   lipgloss.Style
	empty   lipgloss.Style
	status  lipgloss.Style
	help    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		players: []lipgloss.Style{
			r.NewStyle().Foreground(lipgloss.Color("12")),
			r.NewStyle().Foreground(lipgloss.Color("10")),
			r.NewStyle().Foreground(lipgloss.Color("13")),
			r.NewStyle().Foreground(lipgloss.Color("14")),
		},
		food:   r.NewStyle().Foreground(lipgloss.Color("11")),
		stone:  r.NewStyle().Foreground(lipgloss.Color("8")),
		empty:  r.NewStyle().Faint(true),
		status: r.NewStyle().Bold(true),
		help:   r.NewStyle().Faint(true),
	}
}

// Model is the bubbletea model drawing the latest frame.
type Model struct {
	inbox    *inbox
	styles   styles
	frame    *view.Frame
	finished bool
}

// NewModel renders with r, which decides the colour profile.
func NewModel(r *lipgloss.Renderer) Model {
	return Model{inbox: &inbox{}, styles: newStyles(r)}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		a, ok := KeyAction(msg.String())
		if !ok {
			return m, nil
		}
		m.inbox.push(a)
		if a.Kind == view.ActionQuit {
			return m, tea.Quit
		}
	case frameMsg:
		f := view.Frame(msg)
		m.frame = &f
	case finishedMsg:
		m.finished = true
	}
	return m, nil
}

func (m Model) View() string {
	if m.frame == nil {
		return "Waiting for the first frame...\n"
	}
	var b strings.Builder
	for r, row := range m.frame.Cells {
		for c, g := range row {
			b.WriteString(m.cellStyle(g, m.frame.Owners[r][c]).Render(string(g)))
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.styles.status.Render(m.frame.Status))
	b.WriteByte('\n')
	for _, s := range m.frame.Snakes {
		b.WriteString(m.playerStyle(s.Player).Render(fmt.Sprintf("P%d length %d", s.Player+1, s.Length)))
		b.WriteByte(' ')
	}
	b.WriteByte('\n')
	help := "arrows: P1  wasd: P2  +/-: speed  q: quit"
	if m.finished {
		help = "game over, press q to quit"
	}
	b.WriteString(m.styles.help.Render(help))
	b.WriteByte('\n')
	return b.String()
}

func (m Model) cellStyle(g rune, owner int) lipgloss.Style {
	if owner >= 0 {
		return m.playerStyle(owner)
	}
	switch g {
	case view.GlyphFoodSmall, view.GlyphFoodMedium, view.GlyphFoodLarge:
		return m.styles.food
	case view.GlyphStone:
		return m.styles.stone
	}
	return m.styles.empty
}

func (m Model) playerStyle(player int) lipgloss.Style {
	return m.styles.players[player%len(m.styles.players)]
}

// View is a view.View backed by a bubbletea program.
type View struct {
	program *tea.Program
	inbox   *inbox
}

// New creates the program; call Run on the main goroutine to start it.
func New(opts ...tea.ProgramOption) *View {
	m := NewModel(lipgloss.NewRenderer(os.Stdout))
	return &View{program: tea.NewProgram(m, opts...), inbox: m.inbox}
}

// Run blocks until the user quits or Quit is called.
func (v *View) Run() error {
	_, err := v.program.Run()
	return err
}

func (v *View) ReadUserInputs() []view.UserAction { return v.inbox.drain() }

func (v *View) DrawWorld(g *rules.Game) { v.program.Send(frameMsg(view.Snapshot(g))) }

// Finish tells the user the game is over while keeping the last frame up.
func (v *View) Finish() { v.program.Send(finishedMsg{}) }

// Quit stops the program.
func (v *View) Quit() { v.program.Quit() }
