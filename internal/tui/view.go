package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"helpr/internal/model"
	"helpr/internal/statusutil"
	"helpr/internal/view"
)

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	switch {
	case !m.loaded:
		b.WriteString(styleMuted().Render("loading queue…"))
	case m.snap.Student != nil:
		b.WriteString(m.studentView(*m.snap.Student))
	case m.snap.Tutor != nil:
		b.WriteString(m.tutorView(*m.snap.Tutor))
	}

	b.WriteString("\n\n")
	b.WriteString(m.noticeView())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m appModel) headerView() string {
	title := fmt.Sprintf("helpr · %s %s", m.sess.Role, m.sess.ZID)
	if t := m.snap.Tutor; t != nil {
		title += fmt.Sprintf(" · %d in queue", len(t.Rows))
	}
	if m.busy {
		title += " · working…"
	}
	return styleHeader().Render(xansi.Truncate(title, m.width, "…"))
}

func (m appModel) noticeView() string {
	if m.notice == "" {
		return ""
	}
	line := xansi.Truncate(m.notice, m.width, "…")
	if m.noticeErr {
		return styleError().Render(line)
	}
	return styleMuted().Render(line)
}

func (m appModel) studentView(v view.StudentView) string {
	var b strings.Builder
	b.WriteString(v.Message)

	if r := v.Request; r != nil {
		b.WriteString("\n")
		b.WriteString(statusLabel(r.Status))
		if r.Status == model.StatusWaiting && m.position >= 0 {
			b.WriteString(styleMuted().Render(fmt.Sprintf("  %d ahead of you", m.position)))
		}
		b.WriteString("\n\n")
		b.WriteString(renderMarkdown(r.Description, m.contentWidth()))
	}
	if v.Cancel != nil {
		b.WriteString("\n\n")
		b.WriteString(styleKey(v.Cancel.Enabled).Render("[c] cancel request"))
	}
	if m.editing {
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("enter to submit · esc to discard"))
	} else if v.CanSubmit {
		b.WriteString("\n\n")
		b.WriteString(styleKey(true).Render("[n] new request"))
	}
	return b.String()
}

func (m appModel) tutorView(v view.TutorView) string {
	if v.Empty {
		return styleMuted().Render(v.Message)
	}

	const zidCol = 12
	const statusCol = 10
	descCol := m.width - zidCol - statusCol - 6
	if descCol < 10 {
		descCol = 10
	}

	var b strings.Builder
	for i, row := range v.Rows {
		cursor := "  "
		if i == m.selected {
			cursor = "› "
		}
		desc := strings.Join(strings.Fields(row.Description), " ")
		line := cursor +
			padRight(xansi.Truncate(row.ZID, zidCol, "…"), zidCol) + " " +
			padRight(statusutil.Short(row.Status), statusCol) + " " +
			xansi.Truncate(desc, descCol, "…")
		if i == m.selected {
			line = styleSelected().Render(padRight(line, m.width))
		} else {
			line = colorStatus(row.Status).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if row, ok := m.selectedRow(); ok {
		b.WriteString("\n")
		b.WriteString(actionBar(row))
		if m.showDetail {
			b.WriteString("\n\n")
			b.WriteString(renderMarkdown(row.Description, m.contentWidth()))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func actionBar(row view.TutorRow) string {
	labels := map[model.Action]string{
		model.ActionHelp:    "[h] help",
		model.ActionResolve: "[r] resolve",
		model.ActionRevert:  "[v] revert",
	}
	parts := make([]string, 0, len(row.Actions))
	for _, c := range row.Actions {
		parts = append(parts, styleKey(c.Enabled).Render(labels[c.Action]))
	}
	return strings.Join(parts, "  ")
}

func statusLabel(st model.Status) string {
	return colorStatus(st).Bold(true).Render(statusutil.Short(st))
}

func colorStatus(st model.Status) lipgloss.Style {
	switch st {
	case model.StatusWaiting:
		return lipgloss.NewStyle().Foreground(colorWaiting)
	case model.StatusReceiving:
		return lipgloss.NewStyle().Foreground(colorReceiving)
	default:
		return lipgloss.NewStyle()
	}
}

func (m appModel) contentWidth() int {
	w := m.width - 4
	if w > 100 {
		w = 100
	}
	return w
}

func padRight(s string, width int) string {
	if n := xansi.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
