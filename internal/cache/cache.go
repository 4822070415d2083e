// Package cache holds the ordered view of stored tasks that the UI works on.
package cache

import (
	"context"
	"errors"
	"iter"
	"sort"
	"time"

	"go.uber.org/zap"

	"tors/internal/storage"
)

type Source interface {
	Tasks(ctx context.Context) iter.Seq2[storage.Entry, error]
}

// Cache is the live, non-expired tasks sorted by creation date, plus a
// cursor. It is rebuilt wholesale on every Refresh.
type Cache struct {
	src      Source
	log      *zap.Logger
	now      func() time.Time
	items    []storage.Entry
	selected int
}

func New(src Source, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{src: src, log: log, now: time.Now, selected: -1}
}

// SetClock replaces the time source used for the expiry filter.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Refresh re-reads the store. Corrupt records are logged and skipped; any
// other read error leaves the previous list in place.
func (c *Cache) Refresh(ctx context.Context) error {
	now := c.now()
	var items []storage.Entry
	for e, err := range c.src.Tasks(ctx) {
		var decodeErr *storage.DecodeError
		if errors.As(err, &decodeErr) {
			c.log.Warn("skipping unreadable task", zap.String("id", decodeErr.ID), zap.Error(decodeErr.Err))
			continue
		}
		if err != nil {
			return err
		}
		if e.Task.Expired(now) {
			continue
		}
		items = append(items, e)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Task.CreationDate, items[j].Task.CreationDate
		if a.Equal(b) {
			return items[i].ID < items[j].ID
		}
		return a.Before(b)
	})

	c.items = items
	c.selected = c.clamp(c.selected)
	return nil
}

func (c *Cache) clamp(i int) int {
	switch {
	case len(c.items) == 0:
		return -1
	case i < 0:
		return 0
	case i >= len(c.items):
		return len(c.items) - 1
	}
	return i
}

func (c *Cache) Len() int {
	return len(c.items)
}

// Items returns the current list. Callers must not modify it.
func (c *Cache) Items() []storage.Entry {
	return c.items
}

func (c *Cache) At(i int) (storage.Entry, bool) {
	if i < 0 || i >= len(c.items) {
		return storage.Entry{}, false
	}
	return c.items[i], true
}

// Index is the selected row, or -1.
func (c *Cache) Index() int {
	return c.selected
}

func (c *Cache) Selected() (storage.Entry, bool) {
	return c.At(c.selected)
}

func (c *Cache) Select(i int) {
	if len(c.items) == 0 {
		return
	}
	c.selected = c.clamp(i)
}

// SelectID moves the cursor to id and reports whether it is listed.
func (c *Cache) SelectID(id string) bool {
	for i, e := range c.items {
		if e.ID == id {
			c.selected = i
			return true
		}
	}
	return false
}

func (c *Cache) ClearSelection() {
	c.selected = -1
}

func (c *Cache) SelectNext() {
	if len(c.items) == 0 {
		return
	}
	if c.selected < 0 || c.selected >= len(c.items)-1 {
		c.selected = 0
		return
	}
	c.selected++
}

func (c *Cache) SelectPrevious() {
	if len(c.items) == 0 {
		return
	}
	switch {
	case c.selected < 0:
		c.selected = 0
	case c.selected == 0:
		c.selected = len(c.items) - 1
	default:
		c.selected--
	}
}
