package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"tors/internal/config"
)

type keyMap struct {
	Toggle      key.Binding
	New         key.Binding
	Delete      key.Binding
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	Stats       key.Binding
	Quit        key.Binding
	Title       key.Binding
	Body        key.Binding
	Preferences key.Binding
	Save        key.Binding
	Back        key.Binding
	Edit        key.Binding
	Copy        key.Binding
	Newline     key.Binding
	Submit      key.Binding
	Erase       key.Binding
	ForceQuit   key.Binding
}

func newKeyMap(k config.Keymap) keyMap {
	bind := func(keys, help string) key.Binding {
		return key.NewBinding(key.WithKeys(keys), key.WithHelp(label(keys), help))
	}
	return keyMap{
		Toggle:      bind(k.Toggle, "done"),
		New:         bind(k.New, "new"),
		Delete:      bind(k.Delete, "delete"),
		Up:          bind(k.Up, "up"),
		Down:        bind(k.Down, "down"),
		Open:        bind(k.Open, "open"),
		Stats:       bind(k.Stats, "stats"),
		Quit:        bind(k.Quit, "quit"),
		Title:       bind(k.Title, "title"),
		Body:        bind(k.Body, "description"),
		Preferences: bind(k.Preferences, "preferences"),
		Save:        bind(k.Save, "save"),
		Back:        bind(k.Back, "back"),
		Edit:        bind(k.Edit, "edit"),
		Copy:        bind(k.Copy, "copy"),
		Newline:     bind("enter", "new line"),
		Submit:      bind("enter", "apply"),
		Erase:       bind("backspace", "erase"),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func label(k string) string {
	switch k {
	case " ":
		return "space"
	case "up":
		return "↑"
	case "down":
		return "↓"
	}
	return k
}

// helpFor lists the bindings that do something in mode.
func (k keyMap) helpFor(mode Mode) []key.Binding {
	switch mode.(type) {
	case ListMode:
		return []key.Binding{k.Up, k.Down, k.Toggle, k.New, k.Open, k.Delete, k.Stats, k.Quit}
	case TaskViewMode:
		return []key.Binding{k.Title, k.Body, k.Preferences, k.Save, k.Copy, k.Back}
	case TitleEditMode:
		return []key.Binding{k.Erase, k.Back}
	case BodyEditMode:
		return []key.Binding{k.Newline, k.Erase, k.Back}
	case PreferencesViewMode:
		return []key.Binding{k.Up, k.Down, k.Edit, k.Back}
	case PreferencesEditMode:
		return []key.Binding{k.Submit, k.Erase, k.Back}
	case StatsMode:
		return []key.Binding{k.Back}
	}
	return nil
}
