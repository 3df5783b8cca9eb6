package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// AccessTokenExpiry is the duration for which access tokens are valid.
	AccessTokenExpiry = 15 * time.Minute
	// RefreshTokenExpiry is the duration for which refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour
	// PendingTokenExpiry is the duration for which pending-signup tokens are valid.
	PendingTokenExpiry = 10 * time.Minute

	// TypeRefresh tags refresh tokens so they cannot pass as access tokens.
	TypeRefresh = "REFRESH"
	// TypePendingSignup tags signup capability tokens.
	TypePendingSignup = "PENDING_SIGNUP"
)

var (
	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid is returned for malformed tokens, bad signatures,
	// and type mismatches.
	ErrTokenInvalid = errors.New("token is invalid")
)

// AccessClaims are carried by access tokens. TokenVersion binds the token
// to the user's session generation; a bump invalidates everything issued
// before it.
type AccessClaims struct {
	UserID       uuid.UUID `json:"userId"`
	Role         string    `json:"role"`
	TokenVersion int       `json:"tokenVersion"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens.
type RefreshClaims struct {
	UserID       uuid.UUID `json:"userId"`
	TokenVersion int       `json:"tokenVersion"`
	Type         string    `json:"type"`
	jwt.RegisteredClaims
}

// PendingClaims are carried by signup capability tokens. The email lookup
// hash is the only identity link across the multi-step signup flow.
type PendingClaims struct {
	EmailHash string `json:"emailHash"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the three token kinds, each with its
// own secret.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	pendingSecret []byte
}

// NewTokenService creates a token service with distinct signing secrets.
func NewTokenService(accessSecret, refreshSecret, pendingSecret string) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		pendingSecret: []byte(pendingSecret),
	}
}

// IssueAccessToken signs an access token for the user's current state.
func (s *TokenService) IssueAccessToken(userID uuid.UUID, role string, tokenVersion int) (string, error) {
	claims := &AccessClaims{
		UserID:       userID,
		Role:         role,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

// IssueRefreshToken signs a refresh token for the user's current state.
func (s *TokenService) IssueRefreshToken(userID uuid.UUID, tokenVersion int) (string, error) {
	claims := &RefreshClaims{
		UserID:       userID,
		TokenVersion: tokenVersion,
		Type:         TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
}

// IssuePendingToken signs a capability token binding the signup flow to an
// email lookup hash.
func (s *TokenService) IssuePendingToken(emailHash string) (string, error) {
	claims := &PendingClaims{
		EmailHash: emailHash,
		Type:      TypePendingSignup,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(PendingTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.pendingSecret)
}

// VerifyAccessToken checks signature and expiry of an access token. The
// tokenVersion claim must still be compared against the stored user by the
// caller; that check needs live state and lives in the guard middleware.
func (s *TokenService) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken checks signature, expiry and the REFRESH type tag.
func (s *TokenService) VerifyRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(token, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyPendingToken checks signature, expiry and the PENDING_SIGNUP type tag.
func (s *TokenService) VerifyPendingToken(token string) (*PendingClaims, error) {
	claims := &PendingClaims{}
	if err := s.parse(token, claims, s.pendingSecret); err != nil {
		return nil, err
	}
	if claims.Type != TypePendingSignup {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
