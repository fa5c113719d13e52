package identity

import (
	"context"
	"time"
)

// Account is vidcore's canonical security principal.
//
// PasswordHash and RefreshTokenHash are server-side secrets and must never be
// serialized into a response payload; the API layer builds its own sanitized
// projections.
type Account struct {
	ID string

	Username string // stored lowercased
	Email    string

	FullName      string
	AvatarURL     string
	CoverImageURL string // optional; empty means not set

	PasswordHash string

	// RefreshTokenHash holds the digest of the single currently valid refresh
	// credential. nil means no active session (single-session model: login
	// overwrites, logout clears, rotation swaps).
	RefreshTokenHash *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateAccountInput describes a registration request.
// All fields except CoverImageURL are required.
type CreateAccountInput struct {
	FullName      string
	Username      string
	Email         string
	Password      string // plain; hashed by the store
	AvatarURL     string
	CoverImageURL string
	Now           time.Time
}

// UpdateProfileInput carries optional profile mutations.
// nil fields are left untouched.
type UpdateProfileInput struct {
	FullName *string
	Email    *string
}

// ImageKind selects which media URL an UpdateImage call targets.
type ImageKind string

const (
	ImageAvatar ImageKind = "avatar"
	ImageCover  ImageKind = "cover"
)

// Store is the credential-store persistence boundary.
//
// Implementations must make RotateRefreshHash an atomic compare-and-swap on
// the stored refresh-credential hash: of any number of concurrent calls
// presenting the same oldHash, exactly one may succeed; the rest observe
// ErrNotActive.
type Store interface {
	// CreateAccount registers a new account. Username and email are unique
	// (each independently); violations surface as ConflictError.
	CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error)

	// GetByID loads an account by its immutable id.
	GetByID(ctx context.Context, id string) (Account, error)

	// GetByLogin loads an account whose username or email matches the
	// normalized identifier.
	GetByLogin(ctx context.Context, identifier string) (Account, error)

	// SetRefreshHash unconditionally installs a new refresh-credential hash,
	// overwriting any previous one (implicit revocation of the prior session).
	SetRefreshHash(ctx context.Context, now time.Time, accountID, hash string) error

	// RotateRefreshHash swaps oldHash for newHash iff oldHash is the stored
	// value. Returns ErrNotActive (wrapped) on mismatch, including when a
	// concurrent rotation already replaced it.
	RotateRefreshHash(ctx context.Context, now time.Time, accountID, oldHash, newHash string) error

	// ClearRefreshHash removes the stored refresh credential. Idempotent.
	ClearRefreshHash(ctx context.Context, now time.Time, accountID string) error

	// UpdatePassword replaces the password hash. The refresh credential is
	// deliberately left untouched.
	UpdatePassword(ctx context.Context, now time.Time, accountID, passwordHash string) error

	// UpdateProfile applies profile mutations and returns the updated account.
	UpdateProfile(ctx context.Context, now time.Time, accountID string, in UpdateProfileInput) (Account, error)

	// UpdateImage replaces the avatar or cover-image URL.
	UpdateImage(ctx context.Context, now time.Time, accountID string, kind ImageKind, url string) (Account, error)
}
