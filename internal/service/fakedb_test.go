package service

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"sandy/internal/database"

	"github.com/jackc/pgx/v5"
)

// stub answers every statement containing match.
type stub struct {
	match    string
	rows     [][]any
	affected int64
	err      error
}

type call struct {
	query string
	args  []any
}

type fakeDB struct {
	mu sync.Mutex

	stubs []stub
	calls []call

	committed  int
	rolledBack int
	stats      database.PoolStats
}

func newFakeDB(stubs ...stub) *fakeDB {
	return &fakeDB{stubs: stubs}
}

func (db *fakeDB) on(s stub) *fakeDB {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.stubs = append(db.stubs, s)
	return db
}

func (db *fakeDB) find(query string, args []any) (stub, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.calls = append(db.calls, call{query: query, args: args})
	q := normalize(query)
	for _, s := range db.stubs {
		if strings.Contains(q, normalize(s.match)) {
			return s, true
		}
	}
	return stub{}, false
}

// called returns the recorded calls whose query contains match.
func (db *fakeDB) called(match string) []call {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []call
	for _, c := range db.calls {
		if strings.Contains(normalize(c.query), normalize(match)) {
			out = append(out, c)
		}
	}
	return out
}

func normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func (db *fakeDB) Ping(context.Context) error { return nil }
func (db *fakeDB) Close() error               { return nil }
func (db *fakeDB) SQLDB() *sql.DB             { return nil }
func (db *fakeDB) Stats() database.PoolStats  { return db.stats }

func (db *fakeDB) Begin(context.Context) (database.Tx, error) {
	return &fakeTx{db: db}, nil
}

func (db *fakeDB) Exec(_ context.Context, query string, args ...any) (int64, error) {
	s, ok := db.find(query, args)
	if !ok {
		return 0, nil
	}
	return s.affected, s.err
}

func (db *fakeDB) Query(_ context.Context, query string, args ...any) (database.Rows, error) {
	s, ok := db.find(query, args)
	if !ok {
		return &fakeRows{}, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return &fakeRows{rows: s.rows, idx: -1}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, query string, args ...any) database.Row {
	s, ok := db.find(query, args)
	if !ok || (s.err == nil && len(s.rows) == 0) {
		return fakeRow{err: pgx.ErrNoRows}
	}
	if s.err != nil {
		return fakeRow{err: s.err}
	}
	return fakeRow{vals: s.rows[0]}
}

type fakeTx struct {
	db   *fakeDB
	done bool
}

func (t *fakeTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return t.db.Exec(ctx, query, args...)
}

func (t *fakeTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return t.db.Query(ctx, query, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.db.QueryRow(ctx, query, args...)
}

func (t *fakeTx) Commit(context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.done = true
	t.db.committed++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if !t.done {
		t.db.rolledBack++
	}
	return nil
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Next() bool {
	if r.idx+1 >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.idx], dest)
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.vals, dest)
}

// assign copies vals into dest pointers; nil leaves the zero value.
func assign(vals []any, dest []any) error {
	if len(vals) != len(dest) {
		return fmt.Errorf("scan dest mismatch: %d values, %d dest", len(vals), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return fmt.Errorf("dest %d is not a pointer", i)
		}
		target := dv.Elem()
		if vals[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(vals[i])
		switch {
		case v.Type().AssignableTo(target.Type()):
			target.Set(v)
		case target.Kind() == reflect.Pointer && v.Type().AssignableTo(target.Type().Elem()):
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v)
			target.Set(p)
		case v.Type().ConvertibleTo(target.Type()) && v.Kind() != reflect.String:
			target.Set(v.Convert(target.Type()))
		default:
			return fmt.Errorf("scan type mismatch at %d: %s into %s", i, v.Type(), target.Type())
		}
	}
	return nil
}
