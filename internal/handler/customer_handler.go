package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cuprewards/internal/errors"
	"cuprewards/internal/middleware"
	"cuprewards/internal/service"
)

// CustomerHandler handles the customer-facing endpoints.
type CustomerHandler struct {
	customerService service.CustomerService
	qrService       service.QRService
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(customerService service.CustomerService, qrService service.QRService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, qrService: qrService}
}

// QRTokenResponse carries a redemption QR token.
type QRTokenResponse struct {
	QRToken   string    `json:"qrToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// QRToken godoc
// @Summary Issue a redemption QR token
// @Tags customer
// @Produce json
// @Success 200 {object} QRTokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /customer/qr-token [post]
// @Security BearerAuth
func (h *CustomerHandler) QRToken(c echo.Context) error {
	userID, err := contextUserID(c)
	if err != nil {
		return err
	}

	token, expiresAt, err := h.qrService.Issue(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, QRTokenResponse{QRToken: token, ExpiresAt: expiresAt})
}

// Summary godoc
// @Summary Current reward standing
// @Tags customer
// @Produce json
// @Success 200 {object} service.RewardSummary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /customer/summary [get]
// @Security BearerAuth
func (h *CustomerHandler) Summary(c echo.Context) error {
	userID, err := contextUserID(c)
	if err != nil {
		return err
	}

	summary, err := h.customerService.Summary(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// History godoc
// @Summary Transaction history, newest first
// @Tags customer
// @Produce json
// @Success 200 {array} service.HistoryItem
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /customer/history [get]
// @Security BearerAuth
func (h *CustomerHandler) History(c echo.Context) error {
	userID, err := contextUserID(c)
	if err != nil {
		return err
	}

	items, err := h.customerService.History(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, items)
}

func contextUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(middleware.ContextUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Message: "invalid token",
			Code:    "TOKEN_INVALID",
		})
	}
	return userID, nil
}
