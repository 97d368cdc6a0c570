package queuepanel

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/fportier/upnext/internal/queue"
)

// View renders the queue panel.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	innerWidth := m.width - 2 // border padding
	listHeight := m.listHeight()

	header := m.renderHeader(innerWidth)
	separator := strings.Repeat("─", max(innerWidth, 0))
	list := m.renderRows(innerWidth, listHeight)

	content := header + "\n" + separator + "\n" + list

	style := panelStyle
	if m.focused {
		style = panelFocusedStyle
	}
	return style.Width(innerWidth).Render(content)
}

// renderHeader shows the now-playing line and the originating context.
func (m Model) renderHeader(innerWidth int) string {
	var left string
	leftStyle := headerStyle
	if cur := m.snap.Current(); cur != nil {
		left = fmt.Sprintf("%s %s", playingSymbol, cur.Title)
		if cur.Artist != "" {
			left += " — " + cur.Artist
		}
		leftStyle = playingStyle
	} else {
		left = "Nothing playing"
	}

	var right string
	if ctx := m.snap.State.Context; ctx != nil {
		right = "Playing from " + ctx.Name
	}

	leftWidth := innerWidth - len([]rune(right))
	if leftWidth < 0 {
		leftWidth = innerWidth
		right = ""
	}
	return leftStyle.Render(truncateAndPad(left, leftWidth)) + dimmedStyle.Render(right)
}

// renderRows renders the upcoming list with a section label whenever the
// source changes.
func (m Model) renderRows(innerWidth, listHeight int) string {
	rows := m.rows()

	lines := make([]string, 0, listHeight)
	for i := 0; i < listHeight; i++ {
		idx := i + m.offset
		if idx >= len(rows) {
			lines = append(lines, strings.Repeat(" ", max(innerWidth, 0)))
			continue
		}
		lines = append(lines, m.renderRow(rows[idx], idx, innerWidth))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderRow(it queue.Item, idx, width int) string {
	prefix := "  "
	style := trackStyle
	switch {
	case m.Grabbing() && idx == m.grabAt:
		prefix = grabbedSymbol + " "
		style = grabbedStyle
	case idx == m.cursor && m.focused:
		style = cursorStyle
	}

	label := it.Title
	if it.Artist != "" {
		label += " — " + it.Artist
	}

	suffix := m.rowSuffix(it)
	body := truncateAndPad(prefix+label, width-len([]rune(suffix)))
	return style.Render(body) + sectionStyle.Render(suffix)
}

// rowSuffix labels transient items with their section and age; context
// items carry no suffix.
func (m Model) rowSuffix(it queue.Item) string {
	switch it.Source {
	case queue.SourcePlayNext, queue.SourceUserQueue:
		return fmt.Sprintf("%s · %s", it.Source, humanize.Time(it.AddedAt))
	default:
		if it.Isolated {
			return "moved"
		}
		return ""
	}
}

func truncateAndPad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}
