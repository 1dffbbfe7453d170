package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brensch/gridsnakes/selfplay"
	tea "github.com/charmbracelet/bubbletea"
)

type episodeMsg selfplay.Episode

type doneMsg struct {
	stats selfplay.Stats
	err   error
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

const recentEpisodes = 10

// progress is the bubbletea screen shown while self-play runs.
type progress struct {
	total     int
	played    int
	decisions int
	outcomes  map[string]int
	iters     int
	startTime time.Time
	now       time.Time
	recent    []string

	done bool
	err  error
}

func newProgress(total int) progress {
	now := time.Now()
	return progress{total: total, outcomes: make(map[string]int), startTime: now, now: now}
}

func (m progress) Init() tea.Cmd { return tickCmd() }

func (m progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	case episodeMsg:
		ep := selfplay.Episode(msg)
		m.played++
		m.decisions += len(ep.Decisions)
		m.iters += int(ep.Summary.Iterations)
		m.outcomes[ep.Summary.Outcome]++
		m.recent = append([]string{ep.String()}, m.recent...)
		if len(m.recent) > recentEpisodes {
			m.recent = m.recent[:recentEpisodes]
		}
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progress) View() string {
	elapsed := m.now.Sub(m.startTime)
	perSec := 0.0
	iterPerSec := 0.0
	if elapsed >= time.Second {
		perSec = float64(m.played) / elapsed.Seconds()
		iterPerSec = float64(m.iters) / elapsed.Seconds()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Episodes:       %d / %d\n", m.played, m.total)
	fmt.Fprintf(&b, "Decisions:      %d\n", m.decisions)
	fmt.Fprintf(&b, "Duration:       %s\n", elapsed.Round(time.Second))
	fmt.Fprintf(&b, "Episodes/Sec:   %.2f\n", perSec)
	fmt.Fprintf(&b, "Iterations/Sec: %.2f\n", iterPerSec)

	names := make([]string, 0, len(m.outcomes))
	for k := range m.outcomes {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s %d", k, m.outcomes[k])
	}
	fmt.Fprintf(&b, "Outcomes:       %s\n\n", strings.Join(parts, ", "))

	b.WriteString("Recent Episodes:\n")
	for _, r := range m.recent {
		b.WriteString(r)
		b.WriteByte('\n')
	}

	switch {
	case m.done && m.err != nil:
		fmt.Fprintf(&b, "\nStopped: %v\n", m.err)
	case m.done:
		b.WriteString("\nDone.\n")
	default:
		b.WriteString("\nPress q to stop.\n")
	}
	return b.String()
}
