package tablestore

import (
	"context"
	"fmt"
	"sync"
)

// UsersTableName is the logical name of the accounts table.
const UsersTableName = "users"

// Client is the typed facade the auth service works against. It resolves
// the logical users table to its backend identifier once per process and
// delegates row operations to the underlying Store.
type Client struct {
	store Store

	// Single-assignment resolution cache: only a successful resolution is
	// cached; a failure leaves the cell empty so a later call retries.
	// Holding mu across the ListTables call serializes concurrent first
	// resolutions, so all callers converge on one identifier.
	mu           sync.Mutex
	usersTableID string
}

func NewClient(store Store) *Client {
	return &Client{store: store}
}

// UsersTableID resolves and caches the backend identifier of the users
// table. Returns ErrTableNotFound if the backend has no such table.
func (c *Client) UsersTableID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.usersTableID != "" {
		return c.usersTableID, nil
	}

	tables, err := c.store.ListTables(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range tables {
		if t.Name == UsersTableName {
			c.usersTableID = t.ID
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTableNotFound, UsersTableName)
}

// FindUsersByField queries user rows by an equality predicate. No match is
// an empty slice.
func (c *Client) FindUsersByField(ctx context.Context, field, value string) ([]Row, error) {
	tableID, err := c.UsersTableID(ctx)
	if err != nil {
		return nil, err
	}
	return c.store.QueryByEquality(ctx, tableID, field, value)
}

// InsertUser inserts one user row. The result's InsertedID is best-effort;
// re-fetch for the authoritative row.
func (c *Client) InsertUser(ctx context.Context, row Row) (InsertResult, error) {
	tableID, err := c.UsersTableID(ctx)
	if err != nil {
		return InsertResult{}, err
	}
	return c.store.InsertRow(ctx, tableID, row)
}

// UpdateUser applies a partial update to the user row with the given id.
func (c *Client) UpdateUser(ctx context.Context, id string, partial Row) error {
	tableID, err := c.UsersTableID(ctx)
	if err != nil {
		return err
	}
	return c.store.UpdateRow(ctx, tableID, id, partial)
}
