package ui

import (
	"context"
	"errors"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tors/internal/cache"
	"tors/internal/config"
	"tors/internal/ledger"
	"tors/internal/storage"
	"tors/internal/tracker"
)

const (
	frameMargin  = 2
	defaultWidth = 80
)

type Model struct {
	ctx     context.Context
	tracker *tracker.Tracker
	cache   *cache.Cache
	log     *zap.Logger
	keys    keyMap
	help    help.Model
	input   textinput.Model
	clip    func(string) error
	margin  int
	width   int
	height  int
	mode    Mode
	status  string
	err     error
}

type Options struct {
	Config    config.Config
	Logger    *zap.Logger
	Clipboard func(string) error
}

// Run renews repeating tasks, loads the cache and drives the TUI until the
// user quits. A store failure inside a key handler ends the program and is
// returned here.
func Run(ctx context.Context, store *storage.Store, cfg config.Config, log *zap.Logger) error {
	tr := tracker.New(store, ledger.New(store), log)
	if _, err := tr.RenewDaily(ctx); err != nil {
		return err
	}
	c := cache.New(store, log)
	if err := c.Refresh(ctx); err != nil {
		return err
	}

	m := New(ctx, tr, c, Options{Config: cfg, Logger: log})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	log.Info("tui started", zap.Int("tasks", c.Len()))
	final, err := program.Run()
	log.Info("tui stopped")
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func New(ctx context.Context, tr *tracker.Tracker, c *cache.Cache, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}
	cfg := opts.Config
	if cfg.Keys == (config.Keymap{}) {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "value"
	ti.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:     ctx,
		tracker: tr,
		cache:   c,
		log:     log,
		keys:    newKeyMap(cfg.Keys),
		help:    help.New(),
		input:   ti,
		clip:    clip,
		margin:  cfg.WidthMargin,
		width:   defaultWidth,
		mode:    ListMode{},
		status:  "n new • space done • enter open • s stats • esc quit",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Mode is the current interaction state.
func (m Model) Mode() Mode {
	return m.mode
}

func (m Model) Cache() *cache.Cache {
	return m.cache
}

func (m Model) Status() string {
	return m.status
}

func (m Model) Err() error {
	return m.err
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch mode := m.mode.(type) {
	case ListMode:
		return m.updateList(msg)
	case TaskViewMode:
		return m.updateTaskView(mode, msg)
	case TitleEditMode:
		return m.updateTitleEdit(mode, msg)
	case BodyEditMode:
		return m.updateBodyEdit(mode, msg)
	case PreferencesViewMode:
		return m.updatePreferencesView(mode, msg)
	case PreferencesEditMode:
		return m.updatePreferencesEdit(mode, msg)
	case StatsMode:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ListMode{}
		}
	}
	return m, nil
}

// available is the usable frame width.
func (m Model) available() int {
	return max(m.width-2*frameMargin, 0)
}

// limit bounds the display width of single-line input and description lines.
func (m Model) limit() int {
	return max(m.available()-m.margin, 0)
}

// fail handles a store error raised by a key handler. A vanished task is
// stale UI state and is recovered from; anything else stops the program.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, storage.ErrNotFound) {
		m.log.Warn("selected task no longer exists", zap.Error(err))
		m.mode = ListMode{}
		m.status = "Task no longer exists"
		if err := m.cache.Refresh(m.ctx); err != nil {
			return m.fail(err)
		}
		m.cache.ClearSelection()
		return m, nil
	}
	m.log.Error("store operation failed", zap.String("mode", modeName(m.mode)), zap.Error(err))
	m.err = err
	return m, tea.Quit
}

func typed(msg tea.KeyMsg) []rune {
	if msg.Alt {
		return nil
	}
	switch msg.Type {
	case tea.KeyRunes:
		out := make([]rune, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			if unicode.IsPrint(r) {
				out = append(out, r)
			}
		}
		return out
	case tea.KeySpace:
		return []rune{' '}
	}
	return nil
}
