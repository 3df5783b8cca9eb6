package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cuprewards/internal/auth"
	"cuprewards/internal/errors"
	"cuprewards/internal/repository"
)

// Context keys set by the auth middleware chain.
const (
	ContextUserID    = "userID"
	ContextUserRole  = "userRole"
	ContextEmailHash = "emailHash"
)

// JWT returns the echo-jwt middleware configured to verify access tokens.
// It checks signature and expiry only; Guard must run after it to compare
// the token against live user state.
func JWT(tokens *auth.TokenService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return tokens.VerifyAccessToken(token)
		},
	})
}

// Guard re-checks the authenticated user against the database. A token
// whose version no longer matches the user's was issued before a password
// change or revocation and is rejected even though its signature is valid.
func Guard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.AccessClaims)
			if !ok {
				return unauthorized("invalid token", "TOKEN_INVALID")
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return unauthorized(errors.ErrTokenRevoked.Error(), "TOKEN_REVOKED")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
					Message: "internal server error",
					Code:    "INTERNAL_ERROR",
				})
			}
			if user.TokenVersion != claims.TokenVersion {
				return unauthorized(errors.ErrTokenRevoked.Error(), "TOKEN_REVOKED")
			}
			if !user.Active {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Message: errors.ErrAccountDisabled.Error(),
					Code:    "ACCOUNT_DISABLED",
				})
			}

			c.Set(ContextUserID, user.ID)
			c.Set(ContextUserRole, user.Role)
			return next(c)
		}
	}
}

// RequireRole rejects authenticated users whose role does not match.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get(ContextUserRole) != role {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Message: "insufficient permissions",
					Code:    "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// PendingSignup gates the OTP and set-password steps behind the signup
// capability token issued by the first step.
func PendingSignup(tokens *auth.TokenService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := tokens.VerifyPendingToken(token)
			if err != nil {
				return nil, err
			}
			c.Set(ContextEmailHash, claims.EmailHash)
			return claims, nil
		},
	})
}

func unauthorized(message, code string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Message: message,
		Code:    code,
	})
}
