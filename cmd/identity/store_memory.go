package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and DB-less dev mode.
//
// All methods are safe for concurrent use; RotateRefreshHash performs its
// compare-and-swap under the store mutex, matching the Postgres contract.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account // by id
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*Account)}
}

func (s *MemoryStore) CreateAccount(_ context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.CreateAccount"

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
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Username == username {
			return Account{}, ConflictError{Op: op, Field: "username"}
		}
		if NormalizeEmail(a.Email) == NormalizeEmail(email) {
			return Account{}, ConflictError{Op: op, Field: "email"}
		}
	}

	a := Account{
		ID:            id,
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatar,
		CoverImageURL: strings.TrimSpace(in.CoverImageURL),
		PasswordHash:  pwHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.accounts[id] = &a
	return a, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return Account{}, NotFoundError{Op: "identity.GetByID", Resource: "account"}
	}
	return *a, nil
}

func (s *MemoryStore) GetByLogin(_ context.Context, identifier string) (Account, error) {
	const op = "identity.GetByLogin"

	ident := NormalizeUsername(identifier)
	if ident == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "identifier is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Username == ident || NormalizeEmail(a.Email) == ident {
			return *a, nil
		}
	}
	return Account{}, NotFoundError{Op: op, Resource: "account"}
}

func (s *MemoryStore) SetRefreshHash(_ context.Context, now time.Time, accountID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return NotFoundError{Op: "identity.SetRefreshHash", Resource: "account"}
	}
	h := hash
	a.RefreshTokenHash = &h
	a.UpdatedAt = now
	return nil
}

func (s *MemoryStore) RotateRefreshHash(_ context.Context, now time.Time, accountID, oldHash, newHash string) error {
	const op = "identity.RotateRefreshHash"

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok || a.RefreshTokenHash == nil || *a.RefreshTokenHash != oldHash {
		return OpError{Op: op, Kind: ErrNotActive, Msg: "refresh credential not current"}
	}
	h := newHash
	a.RefreshTokenHash = &h
	a.UpdatedAt = now
	return nil
}

func (s *MemoryStore) ClearRefreshHash(_ context.Context, now time.Time, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return NotFoundError{Op: "identity.ClearRefreshHash", Resource: "account"}
	}
	a.RefreshTokenHash = nil
	a.UpdatedAt = now
	return nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, now time.Time, accountID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return NotFoundError{Op: "identity.UpdatePassword", Resource: "account"}
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = now
	return nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, now time.Time, accountID string, in UpdateProfileInput) (Account, error) {
	const op = "identity.UpdateProfile"

	if in.FullName == nil && in.Email == nil {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nothing to update"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}

	if v := trimPtr(in.Email); v != nil {
		for id, other := range s.accounts {
			if id != accountID && NormalizeEmail(other.Email) == NormalizeEmail(*v) {
				return Account{}, ConflictError{Op: op, Field: "email"}
			}
		}
		a.Email = *v
	}
	if v := trimPtr(in.FullName); v != nil {
		a.FullName = *v
	}
	a.UpdatedAt = now
	return *a, nil
}

func (s *MemoryStore) UpdateImage(_ context.Context, now time.Time, accountID string, kind ImageKind, url string) (Account, error) {
	const op = "identity.UpdateImage"

	url = strings.TrimSpace(url)
	if url == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "url is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}

	switch kind {
	case ImageAvatar:
		a.AvatarURL = url
	case ImageCover:
		a.CoverImageURL = url
	default:
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown image kind"}
	}
	a.UpdatedAt = now
	return *a, nil
}

var _ Store = (*MemoryStore)(nil)
