package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akorchemkin/sitebase/pkg/lock"
	"github.com/akorchemkin/sitebase/pkg/security/password"
	"github.com/akorchemkin/sitebase/pkg/tablestore"
)

// UseCase describes the authentication and account operations.
type UseCase interface {
	Register(ctx context.Context, email, pw, fullName string) (Result, error)
	Login(ctx context.Context, email, pw string) (Result, error)
	GetByID(ctx context.Context, id string) (User, bool, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (User, error)
}

// Result is a successful authentication: the sanitized user plus a minted
// session token.
type Result struct {
	User  User
	Token string
}

// Store is the slice of the table store facade the service needs.
type Store interface {
	FindUsersByField(ctx context.Context, field, value string) ([]tablestore.Row, error)
	InsertUser(ctx context.Context, row tablestore.Row) (tablestore.InsertResult, error)
	UpdateUser(ctx context.Context, id string, partial tablestore.Row) error
}

// TokenIssuer abstracts session token minting (e.g. JWT).
type TokenIssuer interface {
	Mint(userID string) (string, error)
}

type service struct {
	store  Store
	hasher password.Hasher
	tokens TokenIssuer
	locks  lock.Locker
	now    func() time.Time
}

// NewService returns the default UseCase implementation.
func NewService(store Store, hasher password.Hasher, tokens TokenIssuer, locks lock.Locker) UseCase {
	return &service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		locks:  locks,
		now:    time.Now,
	}
}

// Register creates an account. The advisory lock keyed by email closes the
// window between the uniqueness check and the insert, so two concurrent
// registrations of one email cannot both pass the check.
func (s *service) Register(ctx context.Context, email, pw, fullName string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || pw == "" {
		return Result{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return Result{}, fmt.Errorf("%w: malformed email", ErrValidation)
	}

	release, err := s.locks.Acquire(ctx, "register:"+email)
	if err != nil {
		return Result{}, storeFault(err)
	}
	defer release()

	rows, err := s.store.FindUsersByField(ctx, colEmail, email)
	if err != nil {
		return Result{}, storeFault(err)
	}
	if len(rows) > 0 {
		return Result{}, ErrAlreadyExists
	}

	digest, err := s.hasher.Hash(pw)
	if err != nil {
		return Result{}, err
	}

	now := s.now().UTC()
	res, err := s.store.InsertUser(ctx, tablestore.Row{
		colEmail:        email,
		colPasswordHash: digest,
		colFullName:     strings.TrimSpace(fullName),
		colAvatarURL:    "",
		colCreatedAt:    formatTime(now),
		colUpdatedAt:    formatTime(now),
	})
	if err != nil {
		return Result{}, storeFault(err)
	}
	if !res.Success {
		return Result{}, fmt.Errorf("%w: insert not acknowledged", ErrStoreUnavailable)
	}

	// The insert result does not echo the stored row, so re-read for the
	// authoritative identifier and timestamps.
	rec, found, err := s.findOneByField(ctx, colEmail, email)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, fmt.Errorf("%w: inserted row not readable", ErrStoreUnavailable)
	}

	token, err := s.tokens.Mint(rec.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{User: rec.sanitized(), Token: token}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, email, pw string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || pw == "" {
		return Result{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	rec, found, err := s.findOneByField(ctx, colEmail, email)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(pw, rec.PasswordHash) {
		return Result{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(rec.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{User: rec.sanitized(), Token: token}, nil
}

// GetByID looks an account up by identifier. Absence is an explicit result,
// not an error.
func (s *service) GetByID(ctx context.Context, id string) (User, bool, error) {
	if id == "" {
		return User{}, false, nil
	}
	rec, found, err := s.findOneByField(ctx, colID, id)
	if err != nil {
		return User{}, false, err
	}
	if !found {
		return User{}, false, nil
	}
	return rec.sanitized(), true, nil
}

// UpdateProfile merges the partial fields, refreshes updated_at and
// re-reads the row so the caller observes the authoritative state.
func (s *service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (User, error) {
	if id == "" || upd.Empty() {
		return User{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	rec, found, err := s.findOneByField(ctx, colID, id)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, ErrNotFound
	}

	ts := s.now().UTC()
	if !ts.After(rec.UpdatedAt) {
		// Coarse clocks may not have advanced; updated_at must still grow.
		ts = rec.UpdatedAt.Add(time.Millisecond)
	}
	partial := tablestore.Row{colUpdatedAt: formatTime(ts)}
	if upd.FullName != nil {
		partial[colFullName] = *upd.FullName
	}
	if upd.AvatarURL != nil {
		partial[colAvatarURL] = *upd.AvatarURL
	}

	if err := s.store.UpdateUser(ctx, id, partial); err != nil {
		if isRowNotFound(err) {
			return User{}, ErrNotFound
		}
		return User{}, storeFault(err)
	}

	rec, found, err = s.findOneByField(ctx, colID, id)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, ErrNotFound
	}
	return rec.sanitized(), nil
}

// findOneByField queries by equality and decodes the first row. Malformed
// rows surface as ErrStoreUnavailable; credentials never appear in errors.
func (s *service) findOneByField(ctx context.Context, field, value string) (record, bool, error) {
	rows, err := s.store.FindUsersByField(ctx, field, value)
	if err != nil {
		return record{}, false, storeFault(err)
	}
	if len(rows) == 0 {
		return record{}, false, nil
	}
	rec, err := recordFromRow(rows[0])
	if err != nil {
		return record{}, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return rec, true, nil
}

func storeFault(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func isRowNotFound(err error) bool {
	return errors.Is(err, tablestore.ErrRowNotFound)
}
