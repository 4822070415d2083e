package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	accountKey        = "account"
	maxCreateAttempts = 8
)

// Store is an ordered key-value store on top of a single sqlite file.
// Tasks live in one namespace keyed by id, the account record in another.
type Store struct {
	db    *sql.DB
	newID func() (string, error)
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, newID: newID}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	value BLOB NOT NULL
) WITHOUT ROWID;`,
		`CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL
) WITHOUT ROWID;`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Put writes the whole record under id, replacing any previous value.
func (s *Store) Put(ctx context.Context, id string, t Task) error {
	data, err := encodeTask(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tasks (id, value) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET value = excluded.value;`, id, data)
	return err
}

// Insert writes a new record and fails with ErrExists if id is taken.
func (s *Store) Insert(ctx context.Context, id string, t Task) error {
	data, err := encodeTask(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks (id, value) VALUES (?, ?) ON CONFLICT(id) DO NOTHING;`, id, data)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExists
	}
	return nil
}

// Create stores t under a freshly generated id, regenerating on collision.
func (s *Store) Create(ctx context.Context, t Task) (string, error) {
	for range maxCreateAttempts {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		err = s.Insert(ctx, id, t)
		if errors.Is(err, ErrExists) {
			continue
		}
		if err != nil {
			return "", err
		}
		return id, nil
	}
	return "", fmt.Errorf("create task: %w after %d attempts", ErrExists, maxCreateAttempts)
}

func (s *Store) Get(ctx context.Context, id string) (Task, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM tasks WHERE id = ?;`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, err
	}
	t, err := decodeTask(data)
	if err != nil {
		return Task{}, &DecodeError{ID: id, Err: err}
	}
	return t, nil
}

// Delete removes id. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	return err
}

// Tasks iterates all stored tasks in key order. Every range over the
// returned sequence runs a fresh query. A record that fails to decode is
// yielded with a *DecodeError and iteration goes on; any other error ends
// it. The store holds one connection, so do not write while ranging.
func (s *Store) Tasks(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		rows, err := s.db.QueryContext(ctx, `SELECT id, value FROM tasks ORDER BY id;`)
		if err != nil {
			yield(Entry{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			var data []byte
			if err := rows.Scan(&id, &data); err != nil {
				yield(Entry{}, err)
				return
			}
			t, err := decodeTask(data)
			if err != nil {
				if !yield(Entry{ID: id}, &DecodeError{ID: id, Err: err}) {
					return
				}
				continue
			}
			if !yield(Entry{ID: id, Task: t}, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entry{}, err)
		}
	}
}

// Account returns the stored account record, or ErrNotFound on first run.
func (s *Store) Account(ctx context.Context) (Account, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?;`, accountKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	a, err := decodeAccount(data)
	if err != nil {
		return Account{}, &DecodeError{ID: accountKey, Err: err}
	}
	return a, nil
}

func (s *Store) PutAccount(ctx context.Context, a Account) error {
	data, err := encodeAccount(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, accountKey, data)
	return err
}

// newID returns a UUIDv7, so key order roughly follows creation order.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
