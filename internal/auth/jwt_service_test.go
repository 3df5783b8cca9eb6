package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *TokenService {
	return NewTokenService("access-secret", "refresh-secret", "pending-secret")
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID, "CUSTOMER", 3)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "CUSTOMER", claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.IssueRefreshToken(userID, 1)
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, 1, claims.TokenVersion)
	assert.Equal(t, TypeRefresh, claims.Type)
}

func TestTokenService_PendingRoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssuePendingToken("abc123hash")
	require.NoError(t, err)

	claims, err := svc.VerifyPendingToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc123hash", claims.EmailHash)
	assert.Equal(t, TypePendingSignup, claims.Type)
}

func TestTokenService_DistinctSecrets(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	access, err := svc.IssueAccessToken(userID, "STAFF", 0)
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken(userID, 0)
	require.NoError(t, err)

	// Tokens signed with one secret must not verify against another kind.
	_, err = svc.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.VerifyPendingToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestService()

	claims := &AccessClaims{
		UserID:       uuid.New(),
		Role:         "CUSTOMER",
		TokenVersion: 0,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-16 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := newTestService()

	_, err := svc.VerifyAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_WrongSigningMethod(t *testing.T) {
	svc := newTestService()

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": uuid.New().String(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("correct horse battery", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
}
