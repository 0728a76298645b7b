package tablestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStoreServer(t *testing.T, handler http.HandlerFunc) *HTTPStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPStore(srv.URL, "test-key")
}

func TestHTTPListTables(t *testing.T) {
	store := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/tables", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"tables": []map[string]string{
			{"id": "tbl_u", "name": "users"},
		}})
	})

	tables, err := store.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Equal(t, "tbl_u", tables[0].ID)
	require.Equal(t, "users", tables[0].Name)
}

func TestHTTPQueryEmptyIsNotAnError(t *testing.T) {
	store := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tables/tbl_u/rows", r.URL.Path)
		require.Equal(t, "email", r.URL.Query().Get("field"))
		require.Equal(t, "a@x.com", r.URL.Query().Get("value"))
		json.NewEncoder(w).Encode(map[string]any{"rows": []any{}})
	})

	rows, err := store.QueryByEquality(context.Background(), "tbl_u", "email", "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestHTTPMalformedResponseIsUnavailable(t *testing.T) {
	store := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	})

	_, err := store.QueryByEquality(context.Background(), "tbl_u", "email", "a@x.com")
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = store.ListTables(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPBackendFaultIsUnavailable(t *testing.T) {
	store := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := store.ListTables(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPNetworkFaultIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // dead endpoint
	store := NewHTTPStore(srv.URL, "")

	_, err := store.ListTables(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPInsertAndUpdate(t *testing.T) {
	store := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			require.Equal(t, "/v1/tables/tbl_u/rows", r.URL.Path)
			var row map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
			require.Equal(t, "a@x.com", row["email"])
			json.NewEncoder(w).Encode(map[string]any{"success": true, "insertedId": "row_1"})
		case http.MethodPatch:
			require.Equal(t, "/v1/tables/tbl_u/rows/row_1", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	res, err := store.InsertRow(context.Background(), "tbl_u", Row{"email": "a@x.com"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "row_1", res.InsertedID)

	require.NoError(t, store.UpdateRow(context.Background(), "tbl_u", "row_1", Row{"full_name": "Ada"}))
}

func TestHTTPUpdateMissingRow(t *testing.T) {
	store := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	err := store.UpdateRow(context.Background(), "tbl_u", "row_x", Row{"full_name": "Ada"})
	require.ErrorIs(t, err, ErrRowNotFound)
}
