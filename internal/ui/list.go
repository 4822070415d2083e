package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tors/internal/storage"
)

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.cache.SelectNext()
	case key.Matches(msg, m.keys.Up):
		m.cache.SelectPrevious()
	case key.Matches(msg, m.keys.Toggle):
		return m.toggleSelected()
	case key.Matches(msg, m.keys.New):
		m.mode = TitleEditMode{Session: Session{Task: storage.NewTask(m.tracker.Now())}}
		m.status = "New task: type a title, esc when done"
	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()
	case key.Matches(msg, m.keys.Open):
		e, ok := m.cache.Selected()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		m.mode = TaskViewMode{Session: Session{ID: e.ID, Task: e.Task}}
		m.status = ""
	case key.Matches(msg, m.keys.Stats):
		stats, err := m.tracker.Ledger().Stats(m.ctx)
		if err != nil {
			return m.fail(err)
		}
		m.mode = StatsMode{Stats: stats}
	}
	return m, nil
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	e, ok := m.cache.Selected()
	if !ok {
		return m, nil
	}
	task, reward, err := m.tracker.Toggle(m.ctx, e.ID)
	if err != nil {
		return m.fail(err)
	}
	if err := m.cache.Refresh(m.ctx); err != nil {
		return m.fail(err)
	}
	m.cache.SelectID(e.ID)

	switch {
	case reward > 0:
		m.status = fmt.Sprintf("Done: %s (+%d exp)", task.Title, reward)
	case task.Done:
		m.status = fmt.Sprintf("Done: %s", task.Title)
	default:
		m.status = fmt.Sprintf("Reopened: %s", task.Title)
	}
	return m, nil
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	e, ok := m.cache.Selected()
	if !ok {
		return m, nil
	}
	if err := m.tracker.Delete(m.ctx, e.ID); err != nil {
		return m.fail(err)
	}
	if err := m.cache.Refresh(m.ctx); err != nil {
		return m.fail(err)
	}
	m.status = fmt.Sprintf("Deleted: %s", e.Task.Title)
	return m, nil
}
