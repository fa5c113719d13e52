package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vidcore/cmd/identity/ids"
)

// Claims is the minimal identity envelope carried by both token kinds.
type Claims struct {
	AccountID string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Issuer    string
}

// Pair is the result of issuing or rotating a session: a short-lived access
// token and a long-lived refresh token, each independently signed.
type Pair struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// TokenManager issues and verifies the access/refresh token pair.
type TokenManager interface {
	IssuePair(accountID string, now time.Time) (Pair, error)
	VerifyAccess(token string, now time.Time) (Claims, error)
	VerifyRefresh(token string, now time.Time) (Claims, error)
}

type jwtClaims struct {
	AccountID string `json:"uid"`
	jwt.RegisteredClaims
}

type hs256Manager struct {
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clockSkew  time.Duration

	accessSecret  []byte
	refreshSecret []byte
}

// NewHS256Manager builds a TokenManager signing HS256 JWTs with two
// independent secrets. Issuance is a pure function of the account id, the
// clock, and the construction-time config.
func NewHS256Manager(cfg Config) (TokenManager, error) {
	if err := cfg.validateSecrets(); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, ErrConfig
	}

	return &hs256Manager{
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		clockSkew:     cfg.ClockSkew,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
	}, nil
}

func (m *hs256Manager) sign(accountID string, now time.Time, ttl time.Duration, secret []byte) (string, time.Time, error) {
	exp := now.Add(ttl)

	// A unique jti per token: timestamp claims are truncated to whole
	// seconds, so without it two pairs minted in the same second would
	// sign to identical strings and rotation could not tell them apart.
	jti, err := ids.NewULID(now)
	if err != nil {
		return "", time.Time{}, err
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *hs256Manager) IssuePair(accountID string, now time.Time) (Pair, error) {
	access, accessExp, err := m.sign(accountID, now, m.accessTTL, m.accessSecret)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := m.sign(accountID, now, m.refreshTTL, m.refreshSecret)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
	}, nil
}

func (m *hs256Manager) VerifyAccess(token string, now time.Time) (Claims, error) {
	return m.verify(token, now, m.accessSecret)
}

func (m *hs256Manager) VerifyRefresh(token string, now time.Time) (Claims, error) {
	return m.verify(token, now, m.refreshSecret)
}

func (m *hs256Manager) verify(token string, now time.Time, secret []byte) (Claims, error) {
	var claims jwtClaims

	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.AccountID == "" {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		AccountID: claims.AccountID,
		Issuer:    claims.Issuer,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
