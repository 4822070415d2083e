// Package ledger keeps the persisted experience total and derives levels
// from it.
package ledger

import (
	"context"
	"errors"
	"math"
	"sync"

	"tors/internal/storage"
)

type Store interface {
	Account(ctx context.Context) (storage.Account, error)
	PutAccount(ctx context.Context, a storage.Account) error
}

type Stats struct {
	Experience  uint32
	Level       uint32
	ToNextLevel uint32
}

// Level is floor(sqrt(exp/10)) - 1, saturating at zero.
func Level(exp uint32) uint32 {
	root := isqrt(exp / 10)
	if root == 0 {
		return 0
	}
	return root - 1
}

// ToNextLevel is the experience still missing before Level(exp)+1.
func ToNextLevel(exp uint32) uint32 {
	next := uint64(Level(exp)) + 2
	target := 10 * next * next
	return uint32(target - uint64(exp))
}

func StatsFor(exp uint32) Stats {
	return Stats{
		Experience:  exp,
		Level:       Level(exp),
		ToNextLevel: ToNextLevel(exp),
	}
}

func isqrt(n uint32) uint32 {
	r := uint64(math.Sqrt(float64(n)))
	for r*r > uint64(n) {
		r--
	}
	for (r+1)*(r+1) <= uint64(n) {
		r++
	}
	return uint32(r)
}

type Ledger struct {
	mu    sync.Mutex
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// AddExperience credits amount and persists the new total.
func (l *Ledger) AddExperience(ctx context.Context, amount uint32) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.account(ctx)
	if err != nil {
		return Stats{}, err
	}
	if amount > math.MaxUint32-a.Experience {
		a.Experience = math.MaxUint32
	} else {
		a.Experience += amount
	}
	if err := l.store.PutAccount(ctx, a); err != nil {
		return Stats{}, err
	}
	return StatsFor(a.Experience), nil
}

func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.account(ctx)
	if err != nil {
		return Stats{}, err
	}
	return StatsFor(a.Experience), nil
}

func (l *Ledger) account(ctx context.Context) (storage.Account, error) {
	a, err := l.store.Account(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Account{}, nil
	}
	return a, err
}
