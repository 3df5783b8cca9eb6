package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cuprewards/internal/auth"
	"cuprewards/internal/config"
	"cuprewards/internal/errors"
	"cuprewards/internal/middleware"
	"cuprewards/internal/service"
)

const refreshCookieName = "refreshToken"

// AuthHandler handles signup, login and token refresh.
type AuthHandler struct {
	signupService service.SignupService
	authService   service.AuthService
	cfg           *config.Config
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(signupService service.SignupService, authService service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{signupService: signupService, authService: authService, cfg: cfg}
}

// SignupRequest starts a new customer signup.
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Mobile    string `json:"mobile" validate:"omitempty,min=7,max=20"`
	DOB       string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

// PendingTokenResponse carries the signup capability token.
type PendingTokenResponse struct {
	Message      string `json:"message"`
	PendingToken string `json:"pendingToken"`
}

// VerifyOTPRequest carries the emailed one-time code.
type VerifyOTPRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// SetPasswordRequest finalizes a signup.
type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// StaffSetPasswordRequest redeems a staff invitation token.
type StaffSetPasswordRequest struct {
	Token    string `json:"token" validate:"required,len=64,hexadecimal"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the access token and user view. The refresh token
// is set as an httpOnly cookie, never returned in the body.
type AuthResponse struct {
	AccessToken string            `json:"accessToken"`
	User        *service.UserView `json:"user,omitempty"`
}

// Signup godoc
// @Summary Start a customer signup
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Identity fields"
// @Success 200 {object} PendingTokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Mobile:    req.Mobile,
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			return badRequest("invalid date of birth")
		}
		in.DOB = &dob
	}

	pendingToken, err := h.signupService.RequestSignup(c.Request().Context(), in)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, PendingTokenResponse{
		Message:      "verification code sent",
		PendingToken: pendingToken,
	})
}

// VerifyOTP godoc
// @Summary Verify the signup code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "One-time code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/signup/verify [post]
// @Security BearerAuth
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	emailHash, err := pendingEmailHash(c)
	if err != nil {
		return err
	}

	if err := h.signupService.VerifyCode(c.Request().Context(), emailHash, req.Code); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "code verified"})
}

// ResendOTP godoc
// @Summary Resend the signup code
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/signup/resend [post]
// @Security BearerAuth
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	emailHash, err := pendingEmailHash(c)
	if err != nil {
		return err
	}

	if err := h.signupService.ResendCode(c.Request().Context(), emailHash); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// SetPassword godoc
// @Summary Finalize signup with a password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SetPasswordRequest true "Password"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/signup/password [post]
// @Security BearerAuth
func (h *AuthHandler) SetPassword(c echo.Context) error {
	var req SetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	emailHash, err := pendingEmailHash(c)
	if err != nil {
		return err
	}

	result, err := h.signupService.SetPassword(c.Request().Context(), emailHash, req.Password)
	if err != nil {
		return fail(err)
	}

	h.setRefreshCookie(c, result.RefreshToken)
	return c.JSON(http.StatusCreated, AuthResponse{
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// StaffSetPassword godoc
// @Summary Redeem a staff invitation and set a password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body StaffSetPasswordRequest true "Invitation token and password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/staff/password [post]
func (h *AuthHandler) StaffSetPassword(c echo.Context) error {
	var req StaffSetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.SetStaffPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "password set, you can now log in"})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(err)
	}

	h.setRefreshCookie(c, result.RefreshToken)
	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// Refresh godoc
// @Summary Refresh the access token
// @Tags auth
// @Produce json
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Message: "missing refresh token",
			Code:    "REFRESH_MISSING",
		})
	}

	accessToken, err := h.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, AuthResponse{AccessToken: accessToken})
}

// Logout godoc
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.RefreshTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}

func pendingEmailHash(c echo.Context) (string, error) {
	emailHash, ok := c.Get(middleware.ContextEmailHash).(string)
	if !ok || emailHash == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Message: "invalid signup token",
			Code:    "TOKEN_INVALID",
		})
	}
	return emailHash, nil
}
