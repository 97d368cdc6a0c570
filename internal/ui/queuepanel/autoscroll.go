package queuepanel

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Edge auto-scroll: while a grabbed item sits at the viewport edge, a
// periodic tick keeps walking it further so long drags do not require
// hammering the key. The tick is a cancellable task: it must stop the
// moment the grab ends, the item leaves the edge, or the list edge is
// reached. The generation counter invalidates ticks scheduled before a
// stop, so a stale tick can never scroll a finished drag.

func (m Model) atViewportEdge(dir int) bool {
	listHeight := m.listHeight()
	if listHeight <= 0 {
		return false
	}
	if dir < 0 {
		return m.cursor == m.offset && m.offset > 0
	}
	return m.cursor == m.offset+listHeight-1 && m.cursor < len(m.rows())-1
}

func (m Model) startAutoScroll(dir int) (Model, tea.Cmd) {
	if m.scrolling && m.scrollDir == dir {
		return m, nil // tick already in flight
	}
	m.scrolling = true
	m.scrollDir = dir
	m.scrollGen++
	return m, m.scheduleTick()
}

func (m *Model) stopAutoScroll() {
	if m.scrolling {
		m.scrolling = false
		m.scrollGen++
	}
}

func (m Model) scheduleTick() tea.Cmd {
	gen := m.scrollGen
	return tea.Tick(autoScrollInterval, func(time.Time) tea.Msg {
		return autoScrollTickMsg{Gen: gen}
	})
}

func (m Model) updateAutoScroll(msg autoScrollTickMsg) (Model, tea.Cmd) {
	if !m.scrolling || msg.Gen != m.scrollGen || !m.Grabbing() {
		return m, nil // stale tick from an ended scroll
	}

	dir := m.scrollDir
	target := m.grabAt + dir
	if target < 0 || target >= len(m.preview) {
		m.stopAutoScroll()
		return m, nil
	}

	m.preview[m.grabAt], m.preview[target] = m.preview[target], m.preview[m.grabAt]
	m.grabAt = target
	m.cursor = target
	m.ensureCursorVisible()

	if !m.atViewportEdge(dir) {
		m.stopAutoScroll()
		return m, nil
	}
	return m, m.scheduleTick()
}
