package ui

import (
	"tors/internal/ledger"
	"tors/internal/storage"
)

// Mode is the state of the interaction loop. Each mode carries only the
// data it needs.
type Mode interface {
	isMode()
}

// Session is the draft being edited. It is a copy of the cached task taken
// when the task was opened; nothing reaches the store until it is saved.
type Session struct {
	ID   string
	Task storage.Task
}

// IsNew reports whether the draft has never been stored.
func (s Session) IsNew() bool {
	return s.ID == ""
}

type ListMode struct{}

type TaskViewMode struct {
	Session Session
}

type TitleEditMode struct {
	Session Session
}

type BodyEditMode struct {
	Session Session
	Row     int
}

type PreferencesViewMode struct {
	Session Session
	Index   int
}

type PreferencesEditMode struct {
	Session Session
	Index   int
	Buffer  string
}

type StatsMode struct {
	Stats ledger.Stats
}

func (ListMode) isMode()            {}
func (TaskViewMode) isMode()        {}
func (TitleEditMode) isMode()       {}
func (BodyEditMode) isMode()        {}
func (PreferencesViewMode) isMode() {}
func (PreferencesEditMode) isMode() {}
func (StatsMode) isMode()           {}

func modeName(m Mode) string {
	switch m.(type) {
	case ListMode:
		return "list"
	case TaskViewMode:
		return "task"
	case TitleEditMode:
		return "title"
	case BodyEditMode:
		return "description"
	case PreferencesViewMode:
		return "preferences"
	case PreferencesEditMode:
		return "preference edit"
	case StatsMode:
		return "stats"
	}
	return "unknown"
}
