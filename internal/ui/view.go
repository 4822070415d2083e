package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"tors/internal/ledger"
	"tors/internal/storage"
)

const (
	emptyListHint = "No tasks yet. Press 'n' to add one."
	checkedMarker = "✅ "
	pendingMarker = "❌ "
)

var (
	frameStyle    = lipgloss.NewStyle().Margin(1, frameMargin)
	headingStyle  = lipgloss.NewStyle().Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("8")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	titleFocus    = lipgloss.Color("6")
	bodyFocus     = lipgloss.Color("2")
)

type focus int

const (
	focusNone focus = iota
	focusTitle
	focusBody
)

func (m Model) View() string {
	var body string
	switch mode := m.mode.(type) {
	case ListMode:
		body = m.viewList()
	case TaskViewMode:
		body = m.viewTask(mode.Session, focusNone)
	case TitleEditMode:
		body = m.viewTask(mode.Session, focusTitle)
	case BodyEditMode:
		body = m.viewTask(mode.Session, focusBody)
	case PreferencesViewMode:
		body = m.viewPreferences(mode.Session, mode.Index, "", false)
	case PreferencesEditMode:
		body = m.viewPreferences(mode.Session, mode.Index, mode.Buffer, true)
	case StatsMode:
		body = m.viewStats(mode.Stats)
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.helpFor(m.mode)))
	return frameStyle.Render(b.String())
}

// inner is the text width inside a bordered box spanning the frame.
func (m Model) inner() int {
	return max(m.available()-2, 1)
}

func (m Model) box(heading, content string, accent lipgloss.TerminalColor) string {
	style := boxStyle.Width(m.inner())
	if accent != nil {
		style = style.BorderForeground(accent)
	}
	return headingStyle.Render(heading) + "\n" + style.Render(content)
}

func (m Model) viewList() string {
	items := m.cache.Items()
	if len(items) == 0 {
		return m.box(" Tasks ", faintStyle.Render(emptyListHint), nil)
	}

	width := m.inner()
	rows := make([]string, 0, len(items))
	for i, e := range items {
		rows = append(rows, m.listRow(e, i == m.cache.Index(), width))
	}
	return m.box(" Tasks ", strings.Join(rows, "\n"), nil)
}

func (m Model) listRow(e storage.Entry, selected bool, width int) string {
	marker := pendingMarker
	if e.Task.Done {
		marker = checkedMarker
	}
	due := "expires " + humanize.Time(e.Task.Preferences.Expire)
	title := xansi.Truncate(e.Task.Title, max(width-xansi.StringWidth(marker)-xansi.StringWidth(due)-2, 1), "…")
	gap := max(width-xansi.StringWidth(marker+title)-xansi.StringWidth(due), 1)
	row := marker + title + strings.Repeat(" ", gap) + faintStyle.Render(due)

	switch {
	case selected:
		return selectedStyle.Render(marker + title + strings.Repeat(" ", gap) + due)
	case e.Task.Done:
		return doneStyle.Render(marker+title) + strings.Repeat(" ", gap) + faintStyle.Render(due)
	}
	return row
}

func (m Model) viewTask(s Session, f focus) string {
	title := s.Task.Title
	desc := s.Task.Description
	var titleAccent, bodyAccent lipgloss.TerminalColor
	switch f {
	case focusTitle:
		title += cursorStyle.Render(" ")
		titleAccent = titleFocus
	case focusBody:
		desc += cursorStyle.Render(" ")
		bodyAccent = bodyFocus
	}

	heading := " Title "
	if s.IsNew() {
		heading = " New task "
	}
	var b strings.Builder
	b.WriteString(m.box(heading, title, titleAccent))
	b.WriteString("\n")
	b.WriteString(m.box(" Description ", desc, bodyAccent))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("created %s • expires %s",
		humanize.Time(s.Task.CreationDate), humanize.Time(s.Task.Preferences.Expire))))
	return b.String()
}

func (m Model) viewPreferences(s Session, index int, buffer string, editing bool) string {
	rows := make([]string, 0, len(preferences))
	for i, p := range preferences {
		row := fmt.Sprintf("%s: %s", p.label, p.show(s.Task.Preferences))
		if i == 1 {
			row += faintStyle.Render(" (" + humanize.Time(s.Task.Preferences.Expire) + ")")
		}
		if i == index {
			row = selectedStyle.Render(fmt.Sprintf("%s: %s", p.label, p.show(s.Task.Preferences)))
		}
		rows = append(rows, row)
	}

	input := m.input
	input.Width = max(m.inner()-1, 1)
	input.SetValue(buffer)
	if editing {
		input.Placeholder = preferenceHint(index)
		input.Focus()
	} else {
		input.Placeholder = ""
		input.Blur()
	}

	var b strings.Builder
	b.WriteString(m.box(" Preferences: "+s.Task.Title+" ", strings.Join(rows, "\n"), nil))
	b.WriteString("\n")
	var accent lipgloss.TerminalColor
	if editing {
		accent = titleFocus
	}
	b.WriteString(m.box(" Edit ", input.View(), accent))
	return b.String()
}

func preferenceHint(index int) string {
	switch index {
	case 1:
		return "YYYY-MM-DD HH:MM:SS"
	case 2:
		return "experience reward"
	}
	return ""
}

func (m Model) viewStats(stats ledger.Stats) string {
	user := os.Getenv("USER")
	heading := " Stats "
	if user != "" {
		heading = fmt.Sprintf(" %s's stats ", user)
	}
	content := fmt.Sprintf("Level: %d\nExp: %s\nExp to next level: %s",
		stats.Level, humanize.Comma(int64(stats.Experience)), humanize.Comma(int64(stats.ToNextLevel)))
	return m.box(heading, content, nil)
}
