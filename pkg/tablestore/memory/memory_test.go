package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akorchemkin/sitebase/pkg/tablestore"
)

func TestInsertQueryUpdate(t *testing.T) {
	ctx := context.Background()
	store := New("users")

	tables, err := store.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	tableID := tables[0].ID

	res, err := store.InsertRow(ctx, tableID, tablestore.Row{"email": "a@x.com", "full_name": "Ada"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotEmpty(t, res.InsertedID)

	rows, err := store.QueryByEquality(ctx, tableID, "email", "a@x.com")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, res.InsertedID, rows[0]["id"])

	none, err := store.QueryByEquality(ctx, tableID, "email", "b@x.com")
	require.NoError(t, err)
	require.Empty(t, none)

	require.NoError(t, store.UpdateRow(ctx, tableID, res.InsertedID, tablestore.Row{"full_name": "Lovelace"}))
	rows, err = store.QueryByEquality(ctx, tableID, "id", res.InsertedID)
	require.NoError(t, err)
	require.Equal(t, "Lovelace", rows[0]["full_name"])
	require.Equal(t, "a@x.com", rows[0]["email"])
}

func TestUnknownTableAndRow(t *testing.T) {
	ctx := context.Background()
	store := New("users")

	_, err := store.QueryByEquality(ctx, "tbl_missing", "email", "a@x.com")
	require.ErrorIs(t, err, tablestore.ErrTableNotFound)

	tables, err := store.ListTables(ctx)
	require.NoError(t, err)
	err = store.UpdateRow(ctx, tables[0].ID, "row_missing", tablestore.Row{})
	require.ErrorIs(t, err, tablestore.ErrRowNotFound)
}

func TestQueryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New("users")
	tables, _ := store.ListTables(ctx)
	tableID := tables[0].ID

	res, err := store.InsertRow(ctx, tableID, tablestore.Row{"email": "a@x.com"})
	require.NoError(t, err)

	rows, err := store.QueryByEquality(ctx, tableID, "email", "a@x.com")
	require.NoError(t, err)
	rows[0]["email"] = "tampered"

	again, err := store.QueryByEquality(ctx, tableID, "id", res.InsertedID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", again[0]["email"])
}
