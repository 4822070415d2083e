package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultDirName        = ".tors"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tors.db"
	DefaultLogName        = "tors.log"
	DefaultWidthMargin    = 3
)

type Keymap struct {
	Toggle      string `toml:"toggle"`
	New         string `toml:"new"`
	Delete      string `toml:"delete"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Open        string `toml:"open"`
	Stats       string `toml:"stats"`
	Quit        string `toml:"quit"`
	Title       string `toml:"title"`
	Body        string `toml:"body"`
	Preferences string `toml:"preferences"`
	Save        string `toml:"save"`
	Back        string `toml:"back"`
	Edit        string `toml:"edit"`
	Copy        string `toml:"copy"`
}

type Config struct {
	Dir         string `toml:"-"`
	DBPath      string `toml:"db_path"`
	LogPath     string `toml:"log_path"`
	LogLevel    string `toml:"log_level"`
	WidthMargin int    `toml:"width_margin"`
	Keys        Keymap `toml:"keys"`
}

// ResolveDir returns $HOME/.tors.
func ResolveDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

func ResolveConfigPath(dir string) string {
	return filepath.Join(dir, DefaultConfigFileName)
}

// LoadOrCreate reads the config file under dir, writing the defaults first
// when it does not exist yet. Relative db and log paths are resolved
// against dir.
func LoadOrCreate(dir string) (Config, error) {
	cfg := defaultConfig()
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return cfg, err
	}
	path := ResolveConfigPath(dir)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(dir), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogName
	}
	if cfg.WidthMargin < 0 {
		cfg.WidthMargin = DefaultWidthMargin
	}
	cfg.Keys = cfg.Keys.withDefaults(defaultConfig().Keys)
	return cfg.resolve(dir), nil
}

func (c Config) resolve(dir string) Config {
	c.Dir = dir
	if !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
	return c
}

// withDefaults fills bindings left empty in a hand-edited file.
func (k Keymap) withDefaults(d Keymap) Keymap {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&k.Toggle, d.Toggle)
	fill(&k.New, d.New)
	fill(&k.Delete, d.Delete)
	fill(&k.Up, d.Up)
	fill(&k.Down, d.Down)
	fill(&k.Open, d.Open)
	fill(&k.Stats, d.Stats)
	fill(&k.Quit, d.Quit)
	fill(&k.Title, d.Title)
	fill(&k.Body, d.Body)
	fill(&k.Preferences, d.Preferences)
	fill(&k.Save, d.Save)
	fill(&k.Back, d.Back)
	fill(&k.Edit, d.Edit)
	fill(&k.Copy, d.Copy)
	return k
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		DBPath:      DefaultDBName,
		LogPath:     DefaultLogName,
		LogLevel:    "info",
		WidthMargin: DefaultWidthMargin,
		Keys: Keymap{
			Toggle:      " ",
			New:         "n",
			Delete:      "d",
			Up:          "up",
			Down:        "down",
			Open:        "enter",
			Stats:       "s",
			Quit:        "esc",
			Title:       "t",
			Body:        "e",
			Preferences: "p",
			Save:        "s",
			Back:        "esc",
			Edit:        "e",
			Copy:        "c",
		},
	}
}
