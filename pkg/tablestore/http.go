package tablestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPStore talks to the hosted tabular store over its JSON API.
type HTTPStore struct {
	BaseURL string
	APIKey  string
	httpDo  *http.Client
}

func NewHTTPStore(baseURL, apiKey string) *HTTPStore {
	return &HTTPStore{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpDo: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type listTablesResponse struct {
	Tables []Table `json:"tables"`
}

func (s *HTTPStore) ListTables(ctx context.Context) ([]Table, error) {
	var out listTablesResponse
	if err := s.do(ctx, http.MethodGet, "/v1/tables", nil, &out); err != nil {
		return nil, err
	}
	if out.Tables == nil {
		return nil, fmt.Errorf("%w: malformed tables response", ErrUnavailable)
	}
	return out.Tables, nil
}

type queryResponse struct {
	Rows []Row `json:"rows"`
}

func (s *HTTPStore) QueryByEquality(ctx context.Context, tableID, field, value string) ([]Row, error) {
	path := fmt.Sprintf("/v1/tables/%s/rows?field=%s&value=%s",
		url.PathEscape(tableID), url.QueryEscape(field), url.QueryEscape(value))
	var out queryResponse
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Rows == nil {
		return nil, fmt.Errorf("%w: malformed query response", ErrUnavailable)
	}
	return out.Rows, nil
}

func (s *HTTPStore) InsertRow(ctx context.Context, tableID string, row Row) (InsertResult, error) {
	path := fmt.Sprintf("/v1/tables/%s/rows", url.PathEscape(tableID))
	var out InsertResult
	if err := s.do(ctx, http.MethodPost, path, row, &out); err != nil {
		return InsertResult{}, err
	}
	return out, nil
}

type updateResponse struct {
	Success bool `json:"success"`
}

func (s *HTTPStore) UpdateRow(ctx context.Context, tableID, rowID string, partial Row) error {
	path := fmt.Sprintf("/v1/tables/%s/rows/%s", url.PathEscape(tableID), url.PathEscape(rowID))
	var out updateResponse
	if err := s.do(ctx, http.MethodPatch, path, partial, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("%w: update not acknowledged", ErrUnavailable)
	}
	return nil
}

// do performs one JSON request against the store. Transport faults, non-2xx
// statuses and undecodable bodies all map to ErrUnavailable; a 404 on a row
// path maps to ErrRowNotFound.
func (s *HTTPStore) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.httpDo.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrRowNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}
