package tablestore

import (
	"context"
	"errors"
)

// Row is one record of a table, keyed by column name. The backend assigns
// the "id" column on insert.
type Row map[string]any

// Column describes one column of a table schema.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is a backend table: opaque identifier plus human-readable name.
type Table struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Schema []Column `json:"schema,omitempty"`
}

// InsertResult reports the outcome of an insert. InsertedID is best-effort:
// the backend does not reliably echo inserted rows, so callers needing the
// authoritative row must re-fetch it.
type InsertResult struct {
	Success    bool   `json:"success"`
	InsertedID string `json:"insertedId,omitempty"`
}

var (
	// ErrTableNotFound is returned when a logical table name resolves to
	// nothing on the backend.
	ErrTableNotFound = errors.New("table not found")

	// ErrRowNotFound is returned by updates targeting a missing row.
	ErrRowNotFound = errors.New("row not found")

	// ErrUnavailable covers backend/network faults and malformed backend
	// responses. Never the caller's fault.
	ErrUnavailable = errors.New("table store unavailable")
)

// Store is the four-primitive surface of the external tabular backend.
type Store interface {
	// ListTables enumerates the tables visible to this client.
	ListTables(ctx context.Context) ([]Table, error)

	// QueryByEquality returns rows whose field equals value. No match is
	// an empty slice, not an error.
	QueryByEquality(ctx context.Context, tableID, field, value string) ([]Row, error)

	// InsertRow inserts one row. The result does not carry the stored row.
	InsertRow(ctx context.Context, tableID string, row Row) (InsertResult, error)

	// UpdateRow applies a partial update to the row with the given id. The
	// updated row is not returned; re-fetch to observe the effect.
	UpdateRow(ctx context.Context, tableID, rowID string, partial Row) error
}
