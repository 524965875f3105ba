package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/dayplan/pkg/colors"
	"github.com/harrisonrobin/dayplan/pkg/model"
)

var (
	styleTask    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ebdbb2"))
	styleBreak   = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
	styleMeeting = lipgloss.NewStyle().Foreground(lipgloss.Color("#83a598")).Bold(true)
	styleHeader  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fe8019")).Bold(true)
)

func entryStyle(kind model.EntryKind) lipgloss.Style {
	switch kind {
	case model.KindBreak:
		return styleBreak
	case model.KindMeeting:
		return styleMeeting
	default:
		return styleTask
	}
}

// writeSchedule prints one "HH:MM - HH:MM: label" line per entry. Styling
// never changes the text of a line. A nil palette disables color.
func writeSchedule(w io.Writer, s model.Schedule, palette *colors.ColorCache, now time.Time) {
	for _, e := range s {
		line := e.Line()
		if palette != nil {
			style := entryStyle(e.Kind)
			if e.Kind == model.KindMeeting && e.Label != model.LunchLabel {
				style = style.Foreground(palette.Color(e.Label, now))
			}
			line = style.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func header(text string, color bool) string {
	if color {
		return styleHeader.Render(text)
	}
	return text
}
