package session

import (
	"context"
	"strings"
	"time"

	"vidcore/cmd/identity"
	"vidcore/cmd/security/token"
)

// Service implements the high-level session operations for vidcore.
//
// It issues token pairs on login, validates access tokens, performs strict
// one-time-use refresh rotation, and clears the stored credential on logout.
// The account row's refresh-credential hash is the only shared mutable state;
// all writes go through the credential store, whose RotateRefreshHash is an
// atomic compare-and-swap (exactly one concurrent rotation can win).
type Service struct {
	cfg    Config
	tokens TokenManager
	store  identity.Store
}

// NewService constructs a Service with the provided configuration, store, and token manager.
func NewService(cfg Config, store identity.Store, tokens TokenManager) *Service {
	return &Service{cfg: cfg, store: store, tokens: tokens}
}

// Login authenticates by username-or-email and password, then issues and
// persists a fresh token pair.
//
// Ordering is issue -> persist -> respond: if persisting the refresh hash
// fails, no tokens are returned, so the caller never holds a credential the
// store does not know about. Persisting overwrites any previous refresh
// hash, which implicitly revokes the account's prior session.
func (s *Service) Login(ctx context.Context, now time.Time, identifier, password string) (identity.Account, Pair, error) {
	acct, err := s.store.GetByLogin(ctx, identifier)
	if err != nil {
		return identity.Account{}, Pair{}, err
	}

	ok, err := identity.VerifyPassword(password, acct.PasswordHash)
	if err != nil {
		return identity.Account{}, Pair{}, err
	}
	if !ok {
		return identity.Account{}, Pair{}, ErrBadCredentials
	}

	pair, err := s.tokens.IssuePair(acct.ID, now)
	if err != nil {
		return identity.Account{}, Pair{}, err
	}

	hash := token.HashRefreshTokenHex(pair.RefreshToken)
	if err := s.store.SetRefreshHash(ctx, now, acct.ID, hash); err != nil {
		return identity.Account{}, Pair{}, err
	}

	acct.RefreshTokenHash = &hash
	return acct, pair, nil
}

// Refresh performs strict one-time-use rotation.
//
// Failure model:
//   - missing/malformed/expired token, or account gone -> ErrInvalidToken
//   - cryptographically valid token that is not the currently stored
//     credential (already rotated, logged out, or lost a concurrent
//     race) -> ErrRefreshReused
//
// A failed refresh never overwrites the stored credential: the swap happens
// through a compare-and-swap keyed on the presented token's digest.
func (s *Service) Refresh(ctx context.Context, now time.Time, presented string) (Pair, error) {
	presented = strings.TrimSpace(presented)
	// Sanity bounds to avoid pathological inputs.
	if presented == "" || len(presented) > 4096 {
		return Pair{}, ErrInvalidToken
	}

	claims, err := s.tokens.VerifyRefresh(presented, now)
	if err != nil {
		return Pair{}, ErrInvalidToken
	}

	acct, err := s.store.GetByID(ctx, claims.AccountID)
	if err != nil {
		if identity.IsNotFound(err) {
			return Pair{}, ErrInvalidToken
		}
		return Pair{}, err
	}

	presentedHash := token.HashRefreshTokenHex(presented)
	if acct.RefreshTokenHash == nil || *acct.RefreshTokenHash != presentedHash {
		return Pair{}, ErrRefreshReused
	}

	pair, err := s.tokens.IssuePair(acct.ID, now)
	if err != nil {
		return Pair{}, err
	}

	newHash := token.HashRefreshTokenHex(pair.RefreshToken)
	if err := s.store.RotateRefreshHash(ctx, now, acct.ID, presentedHash, newHash); err != nil {
		if identity.IsNotActive(err) {
			// A concurrent refresh presenting the same token won the swap.
			return Pair{}, ErrRefreshReused
		}
		return Pair{}, err
	}

	return pair, nil
}

// Logout unconditionally clears the stored refresh credential.
// Idempotent: logging out an already-anonymous account is a no-op success.
func (s *Service) Logout(ctx context.Context, now time.Time, accountID string) error {
	return s.store.ClearRefreshHash(ctx, now, accountID)
}

// ChangePassword re-verifies the current secret and replaces the password
// hash. The refresh credential is deliberately untouched: an existing
// session stays valid across a password change.
func (s *Service) ChangePassword(ctx context.Context, now time.Time, accountID, oldPassword, newPassword string) error {
	acct, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := identity.VerifyPassword(oldPassword, acct.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadCredentials
	}

	newHash, err := identity.HashPassword(newPassword)
	if err != nil {
		return identity.OpError{Op: "session.ChangePassword", Kind: identity.ErrInvalidInput, Msg: err.Error()}
	}

	return s.store.UpdatePassword(ctx, now, accountID, newHash)
}

// Authenticate is the stateless access gate used by every protected
// operation. It verifies signature and expiry, then loads the referenced
// account. It never touches the refresh credential.
func (s *Service) Authenticate(ctx context.Context, now time.Time, accessToken string) (identity.Account, error) {
	claims, err := s.tokens.VerifyAccess(accessToken, now)
	if err != nil {
		return identity.Account{}, ErrInvalidToken
	}

	acct, err := s.store.GetByID(ctx, claims.AccountID)
	if err != nil {
		if identity.IsNotFound(err) {
			return identity.Account{}, ErrInvalidToken
		}
		return identity.Account{}, err
	}
	return acct, nil
}
