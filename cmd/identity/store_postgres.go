package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the credential store over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema identifiers are validated to avoid SQL injection via identifiers.
// - RotateRefreshHash is a single conditional UPDATE: the WHERE clause carries
//   the expected old hash, so the row version check and the overwrite are one
//   atomic statement (exactly one concurrent rotation can win).
// - Errors are mapped to identity sentinel kinds where appropriate.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "vidcore").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "vidcore",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) accountsTable() string {
	return fmt.Sprintf("%s.accounts", s.schema)
}

const accountColumns = `
	id, username, email, full_name, avatar_url, cover_image_url,
	password_hash, refresh_token_hash, created_at, updated_at
`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var cover *string
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.FullName,
		&a.AvatarURL,
		&cover,
		&a.PasswordHash,
		&a.RefreshTokenHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return Account{}, err
	}
	if cover != nil {
		a.CoverImageURL = *cover
	}
	return a, nil
}

// CreateAccount registers a new account, hashing the password before insert.
func (s *PostgresStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.CreateAccount"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	fullName := strings.TrimSpace(in.FullName)
	username := NormalizeUsername(in.Username)
	email := strings.TrimSpace(in.Email)
	avatar := strings.TrimSpace(in.AvatarURL)

	if fullName == "" || username == "" || email == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "full name, username and email are required"}
	}
	if strings.TrimSpace(in.Password) == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password is required"}
	}
	if avatar == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "avatar is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	pwHash, err := HashPassword(in.Password)
	if err != nil {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	id, err := NewULID(now)
	if err != nil {
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}

	var cover any
	if c := strings.TrimSpace(in.CoverImageURL); c != "" {
		cover = c
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (
			id, username, email, full_name, avatar_url, cover_image_url,
			password_hash, refresh_token_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8, $8)
		RETURNING %s
	`, s.accountsTable(), accountColumns)

	a, err := scanAccount(s.pool.QueryRow(ctx, q, id, username, email, fullName, avatar, cover, pwHash, now))
	if err != nil {
		if field, ok := uniqueViolationField(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetByID loads an account by id.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (Account, error) {
	const op = "identity.GetByID"

	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, accountColumns, s.accountsTable())
	a, err := scanAccount(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	if err != nil {
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetByLogin loads an account by username or email (case-insensitive).
func (s *PostgresStore) GetByLogin(ctx context.Context, identifier string) (Account, error) {
	const op = "identity.GetByLogin"

	ident := NormalizeUsername(identifier)
	if ident == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "identifier is required"}
	}

	q := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE username = $1 OR lower(email) = $1
	`, accountColumns, s.accountsTable())

	a, err := scanAccount(s.pool.QueryRow(ctx, q, ident))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	if err != nil {
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// SetRefreshHash overwrites the stored refresh-credential hash (login).
func (s *PostgresStore) SetRefreshHash(ctx context.Context, now time.Time, accountID, hash string) error {
	const op = "identity.SetRefreshHash"

	q := fmt.Sprintf(`
		UPDATE %s
		SET refresh_token_hash = $2, updated_at = $3
		WHERE id = $1
	`, s.accountsTable())

	tag, err := s.pool.Exec(ctx, q, accountID, hash, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "account"}
	}
	return nil
}

// RotateRefreshHash atomically swaps oldHash for newHash.
// The conditional WHERE makes this a compare-and-swap: a concurrent rotation
// that already replaced the hash leaves RowsAffected at 0.
func (s *PostgresStore) RotateRefreshHash(ctx context.Context, now time.Time, accountID, oldHash, newHash string) error {
	const op = "identity.RotateRefreshHash"

	q := fmt.Sprintf(`
		UPDATE %s
		SET refresh_token_hash = $3, updated_at = $4
		WHERE id = $1 AND refresh_token_hash = $2
	`, s.accountsTable())

	tag, err := s.pool.Exec(ctx, q, accountID, oldHash, newHash, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		// Missing account, logged-out account, or a lost rotation race:
		// indistinguishable on purpose to avoid token probing.
		return OpError{Op: op, Kind: ErrNotActive, Msg: "refresh credential not current"}
	}
	return nil
}

// ClearRefreshHash removes the stored refresh credential (logout). Idempotent:
// clearing an already-clear credential succeeds, and clearing a missing
// account is reported as not found.
func (s *PostgresStore) ClearRefreshHash(ctx context.Context, now time.Time, accountID string) error {
	const op = "identity.ClearRefreshHash"

	q := fmt.Sprintf(`
		UPDATE %s
		SET refresh_token_hash = NULL, updated_at = $2
		WHERE id = $1
	`, s.accountsTable())

	tag, err := s.pool.Exec(ctx, q, accountID, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "account"}
	}
	return nil
}

// UpdatePassword replaces the password hash. Refresh credential untouched.
func (s *PostgresStore) UpdatePassword(ctx context.Context, now time.Time, accountID, passwordHash string) error {
	const op = "identity.UpdatePassword"

	q := fmt.Sprintf(`
		UPDATE %s
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, s.accountsTable())

	tag, err := s.pool.Exec(ctx, q, accountID, passwordHash, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "account"}
	}
	return nil
}

// UpdateProfile applies the provided mutations and returns the updated row.
func (s *PostgresStore) UpdateProfile(ctx context.Context, now time.Time, accountID string, in UpdateProfileInput) (Account, error) {
	const op = "identity.UpdateProfile"

	if in.FullName == nil && in.Email == nil {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nothing to update"}
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET full_name = COALESCE($2, full_name),
		    email = COALESCE($3, email),
		    updated_at = $4
		WHERE id = $1
		RETURNING %s
	`, s.accountsTable(), accountColumns)

	a, err := scanAccount(s.pool.QueryRow(ctx, q, accountID, trimPtr(in.FullName), trimPtr(in.Email), now))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	if err != nil {
		if field, ok := uniqueViolationField(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// UpdateImage replaces the avatar or cover-image URL.
func (s *PostgresStore) UpdateImage(ctx context.Context, now time.Time, accountID string, kind ImageKind, url string) (Account, error) {
	const op = "identity.UpdateImage"

	url = strings.TrimSpace(url)
	if url == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "url is required"}
	}

	var column string
	switch kind {
	case ImageAvatar:
		column = "avatar_url"
	case ImageCover:
		column = "cover_image_url"
	default:
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown image kind"}
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, updated_at = $3
		WHERE id = $1
		RETURNING %s
	`, s.accountsTable(), column, accountColumns)

	a, err := scanAccount(s.pool.QueryRow(ctx, q, accountID, url, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	if err != nil {
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// uniqueViolationField maps a Postgres unique violation to a logical field name.
func uniqueViolationField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return "username", true
	case strings.Contains(pgErr.ConstraintName, "email"):
		return "email", true
	default:
		return "account", true
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
