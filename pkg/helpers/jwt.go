package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failure reasons. Callers outside the service collapse all of
// them into a single unauthorized outcome.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature mismatch")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// TokenError describes why a token was rejected. Reason is one of the
// ErrToken* sentinels and is reachable through errors.Is.
type TokenError struct {
	Reason error
	Cause  error
}

func (e *TokenError) Error() string { return "invalid token: " + e.Reason.Error() }
func (e *TokenError) Unwrap() error { return e.Reason }

// Claims is the signed payload of an access token. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

// JWTManager issues and verifies HS256 bearer tokens.
// The secret is fixed at construction and only read afterwards.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type JWTOption func(*JWTManager)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

func NewJWTManager(secret string, ttl time.Duration, issuer string, opts ...JWTOption) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	m := &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the configured token lifetime.
func (m *JWTManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the user. Timestamps are whole seconds so that
// ExpiresAt - IssuedAt equals the TTL exactly.
func (m *JWTManager) Issue(userID, email string) (string, *Claims, error) {
	now := m.now().UTC().Truncate(time.Second)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return s, claims, nil
}

// Verify checks signature and expiry. It never consults any store.
// A token whose expiry equals the current second is already expired.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, &TokenError{Reason: ErrTokenInvalid}
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &TokenError{Reason: ErrTokenMalformed, Cause: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &TokenError{Reason: ErrTokenSignature, Cause: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Reason: ErrTokenExpired, Cause: err}
	default:
		return &TokenError{Reason: ErrTokenInvalid, Cause: err}
	}
}
