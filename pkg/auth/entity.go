package auth

import "time"

// User is the sanitized account view that crosses the service boundary.
// It deliberately carries no password digest field, so the sanitization
// invariant holds by construction.
type User struct {
	ID        string
	Email     string
	FullName  string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate carries the optional fields of a profile change. A nil
// field means "leave unchanged".
type ProfileUpdate struct {
	FullName  *string
	AvatarURL *string
}

// Empty reports whether the update would change nothing.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.AvatarURL == nil
}
