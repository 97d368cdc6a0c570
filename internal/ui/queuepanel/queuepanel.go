// Package queuepanel renders the upcoming queue and drives reordering.
//
// While an item is grabbed the panel reorders a local preview list only;
// the session is untouched until the drop, which commits exactly one
// move. Cancelling the grab discards the preview without any queue
// traffic.
package queuepanel

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fportier/upnext/internal/errmsg"
	"github.com/fportier/upnext/internal/queue"
	"github.com/fportier/upnext/internal/session"
)

const autoScrollInterval = 80 * time.Millisecond

// SnapshotMsg carries a committed queue snapshot into the panel.
type SnapshotMsg struct {
	Snap queue.Snapshot
}

// CommandErrorMsg is sent when a committed command was rejected.
type CommandErrorMsg struct {
	Op  errmsg.Op
	Err error
}

// autoScrollTickMsg drives edge auto-scrolling during a grab. Gen guards
// against ticks from an already-ended grab.
type autoScrollTickMsg struct {
	Gen int
}

// Model represents the queue panel state.
type Model struct {
	svc session.Service

	snap    queue.Snapshot
	visible []queue.Item

	// Grab state: preview is non-nil while an item is grabbed. It is a
	// disposable copy of the visible list; the store is only written on
	// drop.
	preview  []queue.Item
	grabFrom int // visible index the grab started at
	grabAt   int // current position of the grabbed item in the preview

	scrolling bool
	scrollDir int // -1 up, 1 down
	scrollGen int

	cursor  int
	offset  int
	width   int
	height  int
	focused bool
}

// New creates a queue panel bound to a session.
func New(svc session.Service) Model {
	m := Model{svc: svc}
	m.setSnapshot(svc.QueueSnapshot())
	return m
}

// SetFocused sets whether the panel is focused.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

// SetSize sets the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureCursorVisible()
}

// Grabbing reports whether an item is currently grabbed.
func (m Model) Grabbing() bool {
	return m.preview != nil
}

// rows returns what the list currently shows: the preview during a
// grab, the committed visible queue otherwise.
func (m Model) rows() []queue.Item {
	if m.preview != nil {
		return m.preview
	}
	return m.visible
}

// Update handles messages for the queue panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		// A committed mutation supersedes any in-flight preview; the
		// drag is aborted rather than resumed against a stale order.
		m.endGrab()
		m.setSnapshot(msg.Snap)
		return m, nil

	case autoScrollTickMsg:
		return m.updateAutoScroll(msg)

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.Grabbing() {
			return m.moveGrabbed(1)
		}
		m.moveCursor(1)
	case "k", "up":
		if m.Grabbing() {
			return m.moveGrabbed(-1)
		}
		m.moveCursor(-1)
	case "g":
		if !m.Grabbing() {
			m.cursor = 0
			m.offset = 0
		}
	case "G":
		if !m.Grabbing() && len(m.rows()) > 0 {
			m.cursor = len(m.rows()) - 1
			m.ensureCursorVisible()
		}
	case " ", "enter":
		if m.Grabbing() {
			return m.dropGrabbed()
		}
		m.startGrab()
	case "esc":
		if m.Grabbing() {
			m.endGrab()
		}
	case "d", "delete":
		if !m.Grabbing() {
			return m, m.removeUnderCursor()
		}
	case "c":
		if !m.Grabbing() {
			svc := m.svc
			return m, func() tea.Msg {
				if err := svc.ClearTransientQueues(); err != nil {
					return CommandErrorMsg{Op: errmsg.OpQueueClear, Err: err}
				}
				return nil
			}
		}
	}

	return m, nil
}

// startGrab copies the visible list into the preview and picks up the
// item under the cursor.
func (m *Model) startGrab() {
	if m.cursor >= len(m.visible) {
		return
	}
	m.preview = make([]queue.Item, len(m.visible))
	copy(m.preview, m.visible)
	m.grabFrom = m.cursor
	m.grabAt = m.cursor
}

// moveGrabbed shifts the grabbed item inside the preview and starts the
// auto-scroll tick when the item reaches the viewport edge.
func (m Model) moveGrabbed(delta int) (Model, tea.Cmd) {
	target := m.grabAt + delta
	if target < 0 || target >= len(m.preview) {
		return m, nil
	}
	m.preview[m.grabAt], m.preview[target] = m.preview[target], m.preview[m.grabAt]
	m.grabAt = target
	m.cursor = target
	m.ensureCursorVisible()

	if m.atViewportEdge(delta) {
		return m.startAutoScroll(delta)
	}
	m.stopAutoScroll()
	return m, nil
}

// dropGrabbed commits the preview as a single move and discards it.
func (m Model) dropGrabbed() (Model, tea.Cmd) {
	from, to := m.grabFrom, m.grabAt
	m.endGrab()
	if from == to {
		return m, nil
	}

	svc := m.svc
	return m, func() tea.Msg {
		fromCombined, err := svc.VisibleToCombined(from)
		if err != nil {
			return CommandErrorMsg{Op: errmsg.OpQueueMove, Err: err}
		}
		toCombined, err := svc.VisibleToCombined(to)
		if err != nil {
			return CommandErrorMsg{Op: errmsg.OpQueueMove, Err: err}
		}
		if err := svc.MoveItem(fromCombined, toCombined); err != nil {
			return CommandErrorMsg{Op: errmsg.OpQueueMove, Err: err}
		}
		return nil
	}
}

// endGrab discards the preview and stops auto-scrolling.
func (m *Model) endGrab() {
	m.preview = nil
	m.stopAutoScroll()
}

func (m *Model) removeUnderCursor() tea.Cmd {
	if m.cursor >= len(m.visible) {
		return nil
	}
	uid := m.visible[m.cursor].UID
	svc := m.svc
	return func() tea.Msg {
		if err := svc.RemoveItemByUID(uid); err != nil {
			return CommandErrorMsg{Op: errmsg.OpQueueRemove, Err: err}
		}
		return nil
	}
}

func (m *Model) setSnapshot(snap queue.Snapshot) {
	m.snap = snap
	m.visible = snap.Upcoming()
	if m.cursor >= len(m.visible) && m.cursor > 0 {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows()) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows()) {
		m.cursor = len(m.rows()) - 1
	}
	m.ensureCursorVisible()
}

// ensureCursorVisible adjusts the scroll offset to keep the cursor in view.
func (m *Model) ensureCursorVisible() {
	listHeight := m.listHeight()
	if listHeight <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+listHeight {
		m.offset = m.cursor - listHeight + 1
	}
}

func (m Model) listHeight() int {
	// Account for border + header + separator
	return m.height - panelOverhead
}
