package demo

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	sqlstore "github.com/toyz/weaver/pkg/storage/sql"
)

// Note is a stored note
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteInput is the validated body of a create request
type NoteInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NoteStore persists notes
type NoteStore interface {
	List(ctx context.Context, limit, offset int) ([]Note, error)
	Get(ctx context.Context, id int64) (Note, bool, error)
	Create(ctx context.Context, in NoteInput) (Note, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// MemoryStore keeps notes in memory
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	notes  map[int64]Note
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[int64]Note)}
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []Note{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (Note, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	return n, ok, nil
}

func (s *MemoryStore) Create(_ context.Context, in NoteInput) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n := Note{ID: s.nextID, Title: in.Title, Body: in.Body, CreatedAt: time.Now().UTC()}
	s.notes[n.ID] = n
	return n, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notes[id]
	delete(s.notes, id)
	return ok, nil
}

// SQLStore keeps notes in the notes table. Queries use $n placeholders,
// which both pgx and sqlite accept.
type SQLStore struct {
	adapter *sqlstore.Adapter
}

// NewSQLStore uses adapter, or the default SQL adapter when nil
func NewSQLStore(adapter *sqlstore.Adapter) *SQLStore {
	return &SQLStore{adapter: adapter}
}

// Migrate creates the notes table
func (s *SQLStore) Migrate(ctx context.Context) error {
	db, err := sqlstore.DB(s.adapter)
	if err != nil {
		return err
	}
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver() == "pgx" {
		id = "BIGSERIAL PRIMARY KEY"
	}
	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS notes (
		id `+id+`,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`)
	return err
}

func (s *SQLStore) driver() string {
	if s.adapter.Ready() {
		return s.adapter.Config().Driver
	}
	if def := sqlstore.Default.Get(); def != nil {
		return def.Config().Driver
	}
	return ""
}

func (s *SQLStore) List(ctx context.Context, limit, offset int) ([]Note, error) {
	db, err := sqlstore.DB(s.adapter)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		"SELECT id, title, body, created_at FROM notes ORDER BY id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Note, bool, error) {
	db, err := sqlstore.DB(s.adapter)
	if err != nil {
		return Note{}, false, err
	}
	var n Note
	err = db.QueryRowContext(ctx,
		"SELECT id, title, body, created_at FROM notes WHERE id = $1", id).
		Scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, err
	}
	return n, true, nil
}

func (s *SQLStore) Create(ctx context.Context, in NoteInput) (Note, error) {
	n := Note{Title: in.Title, Body: in.Body, CreatedAt: time.Now().UTC()}
	err := sqlstore.Tx(ctx, s.adapter, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			"INSERT INTO notes (title, body, created_at) VALUES ($1, $2, $3) RETURNING id",
			n.Title, n.Body, n.CreatedAt).Scan(&n.ID)
	})
	if err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) (bool, error) {
	db, err := sqlstore.DB(s.adapter)
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, "DELETE FROM notes WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
