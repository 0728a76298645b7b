package auth

import (
	"errors"
	"time"

	"github.com/akorchemkin/sitebase/pkg/tablestore"
)

// Column names of the logical users table.
const (
	colID           = "id"
	colEmail        = "email"
	colPasswordHash = "password_hash"
	colFullName     = "full_name"
	colAvatarURL    = "avatar_url"
	colCreatedAt    = "created_at"
	colUpdatedAt    = "updated_at"
)

// record is the internal row view including the password digest. Values of
// this type never leave the package; callers get the sanitized User.
type record struct {
	User
	PasswordHash string
}

func (r record) sanitized() User { return r.User }

var errMalformedRow = errors.New("malformed user row")

// recordFromRow decodes a raw store row. A row lacking the expected shape
// is an error, not something to coerce silently.
func recordFromRow(row tablestore.Row) (record, error) {
	var rec record
	var ok bool

	if rec.ID, ok = stringField(row, colID); !ok || rec.ID == "" {
		return record{}, errMalformedRow
	}
	if rec.Email, ok = stringField(row, colEmail); !ok || rec.Email == "" {
		return record{}, errMalformedRow
	}
	if rec.PasswordHash, ok = stringField(row, colPasswordHash); !ok || rec.PasswordHash == "" {
		return record{}, errMalformedRow
	}
	rec.FullName, _ = stringField(row, colFullName)
	rec.AvatarURL, _ = stringField(row, colAvatarURL)

	var err error
	if rec.CreatedAt, err = timeField(row, colCreatedAt); err != nil {
		return record{}, errMalformedRow
	}
	if rec.UpdatedAt, err = timeField(row, colUpdatedAt); err != nil {
		return record{}, errMalformedRow
	}
	return rec, nil
}

func stringField(row tablestore.Row, key string) (string, bool) {
	v, ok := row[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func timeField(row tablestore.Row, key string) (time.Time, error) {
	s, ok := stringField(row, key)
	if !ok {
		return time.Time{}, errMalformedRow
	}
	return time.Parse(time.RFC3339Nano, s)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
