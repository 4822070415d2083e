package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tors/internal/tracker"
)

func (m Model) updateTaskView(mode TaskViewMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ListMode{}
		m.status = ""
	case key.Matches(msg, m.keys.Title):
		m.mode = TitleEditMode{Session: mode.Session}
	case key.Matches(msg, m.keys.Body):
		m.mode = BodyEditMode{Session: mode.Session, Row: strings.Count(mode.Session.Task.Description, "\n")}
	case key.Matches(msg, m.keys.Preferences):
		m.mode = PreferencesViewMode{Session: mode.Session}
	case key.Matches(msg, m.keys.Save):
		return m.save(mode.Session)
	case key.Matches(msg, m.keys.Copy):
		t := mode.Session.Task
		if err := m.clip(t.Title + "\n\n" + t.Description); err != nil {
			m.log.Warn("clipboard write failed", zap.Error(err))
			m.status = "Clipboard unavailable"
			return m, nil
		}
		m.status = "Copied to clipboard"
	}
	return m, nil
}

// save commits the draft as a whole record. An empty title is silently
// refused and the draft stays open.
func (m Model) save(s Session) (tea.Model, tea.Cmd) {
	id, err := m.tracker.Save(m.ctx, s.ID, s.Task)
	if errors.Is(err, tracker.ErrEmptyTitle) {
		return m, nil
	}
	if err != nil {
		return m.fail(err)
	}
	if err := m.cache.Refresh(m.ctx); err != nil {
		return m.fail(err)
	}
	m.cache.SelectID(id)
	m.mode = ListMode{}
	m.status = fmt.Sprintf("Saved: %s", s.Task.Title)
	return m, nil
}

func (m Model) updateTitleEdit(mode TitleEditMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = TaskViewMode{Session: mode.Session}
		return m, nil
	case key.Matches(msg, m.keys.Erase):
		mode.Session.Task.Title = dropLast(mode.Session.Task.Title)
	default:
		limit := m.limit()
		for _, r := range typed(msg) {
			title, ok := appendBounded(mode.Session.Task.Title, r, limit)
			if !ok {
				break
			}
			mode.Session.Task.Title = title
		}
	}
	m.mode = mode
	return m, nil
}

func (m Model) updateBodyEdit(mode BodyEditMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	desc := mode.Session.Task.Description
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = TaskViewMode{Session: mode.Session}
		return m, nil
	case key.Matches(msg, m.keys.Newline):
		desc, mode.Row = breakLine(desc, mode.Row)
	case key.Matches(msg, m.keys.Erase):
		desc, mode.Row = eraseBody(desc, mode.Row)
	default:
		limit := m.limit()
		for _, r := range typed(msg) {
			desc, mode.Row = typeBody(desc, mode.Row, r, limit)
		}
	}
	mode.Session.Task.Description = desc
	m.mode = mode
	return m, nil
}
