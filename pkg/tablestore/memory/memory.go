// Package memory provides an in-memory table store used by tests and local
// development. It implements the same four primitives as the hosted
// backend, including its quirk of not echoing inserted rows.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/akorchemkin/sitebase/pkg/tablestore"
)

type table struct {
	id   string
	name string
	rows []tablestore.Row
}

// Store keeps all tables in process memory. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table // keyed by table id
}

// New creates a store pre-populated with empty tables of the given names.
func New(names ...string) *Store {
	s := &Store{tables: make(map[string]*table)}
	for _, name := range names {
		id := "tbl_" + uuid.NewString()
		s.tables[id] = &table{id: id, name: name}
	}
	return s
}

func (s *Store) ListTables(ctx context.Context) ([]tablestore.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tablestore.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, tablestore.Table{ID: t.id, Name: t.name})
	}
	return out, nil
}

func (s *Store) QueryByEquality(ctx context.Context, tableID, field, value string) ([]tablestore.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tablestore.ErrTableNotFound, tableID)
	}
	out := []tablestore.Row{}
	for _, row := range t.rows {
		if fmt.Sprint(row[field]) == value {
			out = append(out, cloneRow(row))
		}
	}
	return out, nil
}

func (s *Store) InsertRow(ctx context.Context, tableID string, row tablestore.Row) (tablestore.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return tablestore.InsertResult{}, fmt.Errorf("%w: %s", tablestore.ErrTableNotFound, tableID)
	}
	stored := cloneRow(row)
	id := uuid.NewString()
	stored["id"] = id
	t.rows = append(t.rows, stored)
	return tablestore.InsertResult{Success: true, InsertedID: id}, nil
}

func (s *Store) UpdateRow(ctx context.Context, tableID, rowID string, partial tablestore.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return fmt.Errorf("%w: %s", tablestore.ErrTableNotFound, tableID)
	}
	for _, row := range t.rows {
		if row["id"] == rowID {
			for k, v := range partial {
				row[k] = v
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", tablestore.ErrRowNotFound, rowID)
}

func cloneRow(row tablestore.Row) tablestore.Row {
	out := make(tablestore.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
