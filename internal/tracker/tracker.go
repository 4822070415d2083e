// Package tracker applies task mutations against the store and the
// experience ledger. Both the TUI and the CLI go through it.
package tracker

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"tors/internal/ledger"
	"tors/internal/storage"
)

var ErrEmptyTitle = errors.New("task title is empty")

type Store interface {
	Get(ctx context.Context, id string) (storage.Task, error)
	Put(ctx context.Context, id string, t storage.Task) error
	Create(ctx context.Context, t storage.Task) (string, error)
	Delete(ctx context.Context, id string) error
	Tasks(ctx context.Context) iter.Seq2[storage.Entry, error]
}

type Tracker struct {
	store  Store
	ledger *ledger.Ledger
	log    *zap.Logger
	now    func() time.Time
}

func New(store Store, l *ledger.Ledger, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{store: store, ledger: l, log: log, now: time.Now}
}

func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

func (t *Tracker) Now() time.Time {
	return t.now()
}

func (t *Tracker) Ledger() *ledger.Ledger {
	return t.ledger
}

// Toggle flips the done flag of the stored task. The first time a task
// becomes done its reward is credited; later toggles never credit again.
// It returns the written task and the amount credited.
func (t *Tracker) Toggle(ctx context.Context, id string) (storage.Task, uint32, error) {
	task, err := t.store.Get(ctx, id)
	if err != nil {
		return storage.Task{}, 0, err
	}
	task.Done = !task.Done

	var reward uint32
	if task.Done && !task.ExpAwarded {
		task.ExpAwarded = true
		reward = task.Preferences.ExpReward
	}
	if err := t.store.Put(ctx, id, task); err != nil {
		return storage.Task{}, 0, err
	}
	t.log.Debug("task toggled", zap.String("id", id), zap.Bool("done", task.Done))

	if reward > 0 {
		stats, err := t.ledger.AddExperience(ctx, reward)
		if err != nil {
			return task, 0, err
		}
		t.log.Info("experience credited",
			zap.String("id", id),
			zap.Uint32("reward", reward),
			zap.Uint32("experience", stats.Experience),
			zap.Uint32("level", stats.Level))
	}
	return task, reward, nil
}

// Save writes task wholesale. An empty id creates a new record and the
// generated id is returned. Blank titles are rejected with ErrEmptyTitle.
func (t *Tracker) Save(ctx context.Context, id string, task storage.Task) (string, error) {
	if strings.TrimSpace(task.Title) == "" {
		return "", ErrEmptyTitle
	}
	if id == "" {
		newID, err := t.store.Create(ctx, task)
		if err != nil {
			return "", err
		}
		t.log.Debug("task created", zap.String("id", newID))
		return newID, nil
	}
	if err := t.store.Put(ctx, id, task); err != nil {
		return "", err
	}
	t.log.Debug("task saved", zap.String("id", id))
	return id, nil
}

func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.store.Delete(ctx, id); err != nil {
		return err
	}
	t.log.Debug("task deleted", zap.String("id", id))
	return nil
}

// PurgeExpired deletes expired tasks that do not repeat.
func (t *Tracker) PurgeExpired(ctx context.Context) (int, error) {
	now := t.now()
	expired, err := t.matching(ctx, func(task storage.Task) bool {
		return task.Expired(now) && !task.Preferences.DailyRepeat
	})
	if err != nil {
		return 0, err
	}
	for _, e := range expired {
		if err := t.store.Delete(ctx, e.ID); err != nil {
			return 0, err
		}
	}
	if len(expired) > 0 {
		t.log.Info("purged expired tasks", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

// RenewDaily moves every expired daily task forward by whole days until it
// expires in the future, and reopens it so it can be earned again.
func (t *Tracker) RenewDaily(ctx context.Context) (int, error) {
	now := t.now()
	due, err := t.matching(ctx, func(task storage.Task) bool {
		return task.Preferences.DailyRepeat && task.Expired(now)
	})
	if err != nil {
		return 0, err
	}
	for _, e := range due {
		task := e.Task
		task.Preferences.Expire = NextExpire(task.Preferences.Expire, now)
		task.Done = false
		task.ExpAwarded = false
		if err := t.store.Put(ctx, e.ID, task); err != nil {
			return 0, err
		}
	}
	if len(due) > 0 {
		t.log.Info("renewed daily tasks", zap.Int("count", len(due)))
	}
	return len(due), nil
}

// NextExpire advances expire by whole days until it is after now.
func NextExpire(expire, now time.Time) time.Time {
	if expire.After(now) {
		return expire
	}
	days := int(now.Sub(expire)/(24*time.Hour)) + 1
	next := expire.AddDate(0, 0, days)
	for !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// matching collects entries first; the store cannot be written while a
// read is in flight.
func (t *Tracker) matching(ctx context.Context, keep func(storage.Task) bool) ([]storage.Entry, error) {
	var out []storage.Entry
	for e, err := range t.store.Tasks(ctx) {
		var decodeErr *storage.DecodeError
		if errors.As(err, &decodeErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if keep(e.Task) {
			out = append(out, e)
		}
	}
	return out, nil
}
