package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// RenderSummary writes groups as a table. Nothing stored prints a single
// line instead.
func RenderSummary(w io.Writer, groups []Group) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "no episodes found")
		return err
	}
	t := newTable("depth", "board", "players", "games", "avg iter", "wins", "losses", "draws", "capped", "avg len", "avg snacks", "avg ms")
	for _, g := range groups {
		board := fmt.Sprintf("%dx%d", g.Rows, g.Cols)
		if g.Walls {
			board += " walls"
		}
		t.Row(
			strconv.Itoa(g.Depth),
			board,
			strconv.Itoa(g.Players),
			strconv.FormatInt(g.Games, 10),
			fmt.Sprintf("%.1f", g.AvgIterations),
			strconv.FormatInt(g.Wins, 10),
			strconv.FormatInt(g.Losses, 10),
			strconv.FormatInt(g.Draws, 10),
			strconv.FormatInt(g.Capped, 10),
			fmt.Sprintf("%.2f", g.AvgLength),
			fmt.Sprintf("%.2f", g.AvgSnacks),
			fmt.Sprintf("%.1f", g.AvgDuration),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderActions writes the action histogram.
func RenderActions(w io.Writer, actions []ActionCount) error {
	if len(actions) == 0 {
		return nil
	}
	var total int64
	for _, a := range actions {
		total += a.Count
	}
	t := newTable("action", "count", "share")
	for _, a := range actions {
		t.Row(a.Action, strconv.FormatInt(a.Count, 10), fmt.Sprintf("%.1f%%", 100*float64(a.Count)/float64(total)))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
