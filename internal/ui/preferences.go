package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tors/internal/storage"
)

const expireLayout = "2006-01-02 15:04:05"

type preference struct {
	label string
	show  func(storage.Preferences) string
	// toggle is set for flags, which flip in place instead of opening the
	// edit box.
	toggle func(*storage.Preferences)
	parse  func(string, *storage.Preferences) error
}

var preferences = []preference{
	{
		label:  "Repeat",
		show:   func(p storage.Preferences) string { return strconv.FormatBool(p.DailyRepeat) },
		toggle: func(p *storage.Preferences) { p.DailyRepeat = !p.DailyRepeat },
	},
	{
		label: "Expire",
		show:  func(p storage.Preferences) string { return p.Expire.Format(expireLayout) },
		parse: func(s string, p *storage.Preferences) error {
			t, err := time.ParseInLocation(expireLayout, strings.TrimSpace(s), time.Local)
			if err != nil {
				return err
			}
			p.Expire = storage.Timestamp(t)
			return nil
		},
	},
	{
		label: "Experience",
		show:  func(p storage.Preferences) string { return strconv.FormatUint(uint64(p.ExpReward), 10) },
		parse: func(s string, p *storage.Preferences) error {
			n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
			if err != nil {
				return err
			}
			p.ExpReward = uint32(n)
			return nil
		},
	},
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func (m Model) updatePreferencesView(mode PreferencesViewMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = TaskViewMode{Session: mode.Session}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		mode.Index = wrapIndex(mode.Index-1, len(preferences))
	case key.Matches(msg, m.keys.Down):
		mode.Index = wrapIndex(mode.Index+1, len(preferences))
	case key.Matches(msg, m.keys.Edit):
		pref := preferences[mode.Index]
		if pref.toggle != nil {
			pref.toggle(&mode.Session.Task.Preferences)
			break
		}
		m.mode = PreferencesEditMode{Session: mode.Session, Index: mode.Index}
		return m, nil
	}
	m.mode = mode
	return m, nil
}

// updatePreferencesEdit applies the buffer on enter. Input that does not
// parse keeps the edit box open with the buffer as typed.
func (m Model) updatePreferencesEdit(mode PreferencesEditMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = PreferencesViewMode{Session: mode.Session, Index: mode.Index}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		pref := preferences[mode.Index]
		if pref.parse == nil {
			return m, nil
		}
		prefs := mode.Session.Task.Preferences
		if err := pref.parse(mode.Buffer, &prefs); err != nil {
			return m, nil
		}
		mode.Session.Task.Preferences = prefs
		m.mode = PreferencesViewMode{Session: mode.Session, Index: mode.Index}
		return m, nil
	case key.Matches(msg, m.keys.Erase):
		mode.Buffer = dropLast(mode.Buffer)
	default:
		limit := m.limit()
		for _, r := range typed(msg) {
			buf, ok := appendBounded(mode.Buffer, r, limit)
			if !ok {
				break
			}
			mode.Buffer = buf
		}
	}
	m.mode = mode
	return m, nil
}
