package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/swarmeng/internal/engine"
)

var (
	plotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

const (
	watchWidth  = 70
	watchHeight = 20
)

type watchTickMsg time.Time

type watchModel struct {
	eng      *engine.Engine
	interval time.Duration
	paused   bool
	canvas   [][]rune
}

func newWatchModel(eng *engine.Engine, interval time.Duration) watchModel {
	canvas := make([][]rune, watchHeight)
	for i := range canvas {
		canvas[i] = make([]rune, watchWidth)
	}
	return watchModel{eng: eng, interval: interval, canvas: canvas}
}

func (m watchModel) Init() tea.Cmd {
	return watchTick(m.interval)
}

func watchTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		}
		return m, nil
	case watchTickMsg:
		if !m.paused {
			m.eng.Tick()
		}
		return m, watchTick(m.interval)
	}
	return m, nil
}

func (m watchModel) View() string {
	m.drawPositions()

	var b strings.Builder
	b.WriteString(plotStyle.Render(fmt.Sprintf("swarmeng  %s / %s", m.eng.ModelID(), m.eng.AlgorithmID())))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render(fmt.Sprintf("t=%.2fs  agents=%d", m.eng.Time(), m.eng.Len())))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("-", watchWidth)))
	b.WriteString("\n")

	for _, row := range m.canvas {
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(strings.Repeat("-", watchWidth)))
	b.WriteString("\n")
	status := "running"
	if m.paused {
		status = "paused"
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("[space] pause/resume (%s)  [q] quit", status)))
	b.WriteString("\n")
	return b.String()
}

// drawPositions projects agent positions onto the x/y plane into the
// terminal canvas, centered on the swarm's centroid.
func (m watchModel) drawPositions() {
	for y := range m.canvas {
		for x := range m.canvas[y] {
			m.canvas[y][x] = ' '
		}
	}

	positions := m.eng.Positions()
	n := len(positions) / 3
	if n == 0 {
		return
	}

	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		cx += float64(positions[i*3])
		cy += float64(positions[i*3+1])
	}
	cx /= float64(n)
	cy /= float64(n)

	const scale = 1.2
	for i := 0; i < n; i++ {
		dx := float64(positions[i*3]) - cx
		dy := float64(positions[i*3+1]) - cy
		px := watchWidth/2 + int(dx*scale)
		py := watchHeight/2 - int(dy*scale*0.5)
		if px < 0 || px >= watchWidth || py < 0 || py >= watchHeight {
			continue
		}
		m.canvas[py][px] = 'o'
	}
	m.canvas[watchHeight/2][watchWidth/2] = '+'
}
