package authclient

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// cacheState is what survives between process runs: the last authenticated
// user for fast first paint, plus the session token that proves it.
type cacheState struct {
	User  *User  `json:"user,omitempty"`
	Token string `json:"token,omitempty"`
}

// fileCache persists cacheState as a JSON file with owner-only permissions.
type fileCache struct {
	path string
}

func (c *fileCache) load() (cacheState, error) {
	var st cacheState
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return cacheState{}, err
	}
	return st, nil
}

func (c *fileCache) save(st cacheState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}

func (c *fileCache) clear() error {
	err := os.Remove(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
