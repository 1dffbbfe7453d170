package tui

import (
	"io"
	"strings"
	"testing"

	"github.com/brensch/gridsnakes/game"
	"github.com/brensch/gridsnakes/grid"
	"github.com/brensch/gridsnakes/rules"
	"github.com/brensch/gridsnakes/view"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestKeyAction(t *testing.T) {
	cases := []struct {
		key  string
		want view.UserAction
	}{
		{"up", view.Player(0, rules.Go(game.Up))},
		{"left", view.Player(0, rules.Go(game.Left))},
		{"d", view.Player(1, rules.Go(game.Right))},
		{"s", view.Player(1, rules.Go(game.Down))},
		{"q", view.Quit()},
		{"ctrl+c", view.Quit()},
		{"+", view.Faster()},
		{"-", view.Slower()},
	}
	for _, tc := range cases {
		got, ok := KeyAction(tc.key)
		if !ok || got != tc.want {
			t.Fatalf("KeyAction(%q)=%v,%v want=%v", tc.key, got, ok, tc.want)
		}
	}
	if _, ok := KeyAction("x"); ok {
		t.Fatalf("unmapped key accepted")
	}
}

func TestModel_KeysQueueActions(t *testing.T) {
	m := NewModel(lipgloss.NewRenderer(io.Discard))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if cmd != nil {
		t.Fatalf("unexpected command for a steering key")
	}
	next, _ = next.Update(runes("w"))
	next, _ = next.Update(runes("z"))
	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("ctrl+c did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("ctrl+c command is not tea.Quit")
	}

	want := []view.UserAction{
		view.Player(0, rules.Go(game.Right)),
		view.Player(1, rules.Go(game.Up)),
		view.Quit(),
	}
	if diff := cmp.Diff(want, m.inbox.drain()); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
	if got := m.inbox.drain(); len(got) != 0 {
		t.Fatalf("inbox not drained: %v", got)
	}
}

func TestModel_RendersFrame(t *testing.T) {
	w := game.NewWorld(3, 4)
	if err := w.AddSnake(grid.Point{Row: 1, Col: 1}, game.Down); err != nil {
		t.Fatalf("AddSnake: %v", err)
	}
	if err := w.PlaceStone(grid.Point{Row: 2, Col: 3}); err != nil {
		t.Fatalf("PlaceStone: %v", err)
	}
	g := rules.New(w)

	m := NewModel(lipgloss.NewRenderer(io.Discard))
	if got := m.View(); !strings.Contains(got, "Waiting") {
		t.Fatalf("view before first frame=%q", got)
	}

	next, _ := m.Update(frameMsg(view.Snapshot(g)))
	got := next.View()
	for _, want := range []string{"_.__\n", "_o__\n", "___!\n", "Iteration 0", "P1 length 2", "q: quit"} {
		if !strings.Contains(got, want) {
			t.Fatalf("view missing %q:\n%s", want, got)
		}
	}

	next, _ = next.Update(finishedMsg{})
	if got := next.View(); !strings.Contains(got, "game over") {
		t.Fatalf("finished view=%q", got)
	}
}
