package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	markStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	fastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("130")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	filledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

func (m Model) View() string {
	if m.draining {
		return panelStyle.Render(fmt.Sprintf(
			"%s\n\nwaiting for %d encode(s) to finish...",
			titleStyle.Render("servecut: "+m.title),
			m.ctrl.InFlight(),
		)) + "\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("servecut: " + m.title))
	b.WriteString("\n\n")

	pos := m.ctrl.Pos()
	total := m.ctrl.FrameCount()
	fps := m.ctrl.FrameRate()
	line := fmt.Sprintf("frame %d / %d   %.2fs / %.2fs   %.2f fps",
		pos, total, float64(pos)/fps, float64(total)/fps, fps)
	if m.ctrl.Fast() {
		line += "  " + fastStyle.Render(" FAST ")
	}
	if m.ctrl.Ended() {
		line += "  " + mutedStyle.Render("end of stream, b rewinds")
	}
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(m.timeline(pos, total))
	b.WriteString("\n\n")

	if start, open := m.ctrl.OpenMark(); open {
		b.WriteString(markStyle.Render(fmt.Sprintf("● mark open at frame %d", start)))
	} else {
		b.WriteString(mutedStyle.Render("no open mark"))
	}
	b.WriteString("   ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("encoding: %d in flight", m.ctrl.InFlight())))
	b.WriteString("\n\n")

	for _, note := range m.notes {
		b.WriteString(noteStyle.Render("· " + note))
		b.WriteString("\n")
	}
	if len(m.notes) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// timeline renders the scrub position as a fixed-width bar.
func (m Model) timeline(pos, total int) string {
	width := m.width - 4
	if width < 10 {
		width = 60
	}
	if width > 100 {
		width = 100
	}
	filled := 0
	if total > 0 {
		filled = pos * width / total
	}
	if filled > width {
		filled = width
	}
	return filledStyle.Render(strings.Repeat("━", filled)) +
		mutedStyle.Render(strings.Repeat("─", width-filled))
}
