package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/equilobe/library-go/librarystore/postgresengine/internal/adapters"
)

var errFakeDB = errors.New("fake db failure")

// fakeDB scripts the answers of a database for the engine's unit tests.
// Exec calls consume execResults in order, Query calls consume queryResults in order.
type fakeDB struct {
	mu           sync.Mutex
	execResults  []fakeExec
	queryResults []fakeQuery
	beginErr     error
	commitErr    error
	onExec       func(call int)
	execCalls    int
	queries      []string
	statements   []string
	committed    int
	rolledBack   int
}

type fakeExec struct {
	rowsAffected int64
	err          error
}

type fakeQuery struct {
	rows [][]any
	err  error
}

func (db *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.queries = append(db.queries, query)

	if len(db.queryResults) == 0 {
		return &fakeRows{}, nil
	}

	next := db.queryResults[0]
	db.queryResults = db.queryResults[1:]

	if next.err != nil {
		return nil, next.err
	}

	return &fakeRows{values: next.rows}, nil
}

func (db *fakeDB) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	return db.exec(query)
}

func (db *fakeDB) BeginTx(_ context.Context) (adapters.DBTx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}

	return &fakeTx{db: db}, nil
}

func (db *fakeDB) exec(query string) (adapters.DBResult, error) {
	db.mu.Lock()
	db.statements = append(db.statements, query)
	call := db.execCalls
	db.execCalls++

	next := fakeExec{rowsAffected: 1}
	if len(db.execResults) > 0 {
		next = db.execResults[0]
		db.execResults = db.execResults[1:]
	}
	onExec := db.onExec
	db.mu.Unlock()

	if onExec != nil {
		onExec(call)
	}

	if next.err != nil {
		return nil, next.err
	}

	return fakeResult{rowsAffected: next.rowsAffected}, nil
}

type fakeTx struct {
	db   *fakeDB
	done bool
}

func (tx *fakeTx) Query(ctx context.Context, query string) (adapters.DBRows, error) {
	return tx.db.Query(ctx, query)
}

func (tx *fakeTx) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	return tx.db.exec(query)
}

func (tx *fakeTx) Commit(_ context.Context) error {
	if tx.db.commitErr != nil {
		return tx.db.commitErr
	}

	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()

	tx.db.committed++
	tx.done = true

	return nil
}

func (tx *fakeTx) Rollback(_ context.Context) error {
	if tx.done {
		return nil
	}

	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()

	tx.db.rolledBack++
	tx.done = true

	return nil
}

type fakeResult struct {
	rowsAffected int64
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

type fakeRows struct {
	values [][]any
	index  int
}

func (r *fakeRows) Next() bool {
	if r.index >= len(r.values) {
		return false
	}

	r.index++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.values[r.index-1]
	if len(row) != len(dest) {
		return fmt.Errorf("fake row has %d columns, scan wants %d", len(row), len(dest))
	}

	for i, value := range row {
		target := reflect.ValueOf(dest[i]).Elem()
		if value == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}

		target.Set(reflect.ValueOf(value))
	}

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	return nil
}
