package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cuprewards/internal/service"
)

// StaffHandler handles the staff point-of-sale endpoints.
type StaffHandler struct {
	staffService  service.StaffService
	ledgerService service.LedgerService
}

// NewStaffHandler creates a new staff handler.
func NewStaffHandler(staffService service.StaffService, ledgerService service.LedgerService) *StaffHandler {
	return &StaffHandler{staffService: staffService, ledgerService: ledgerService}
}

// ScanQRRequest identifies the scanned customer and the serving site.
type ScanQRRequest struct {
	QRToken string `json:"qrToken" validate:"required,len=64,hexadecimal"`
	SiteID  string `json:"siteId" validate:"required,uuid4"`
}

// TransactRequest records a point-of-sale event against a customer.
type TransactRequest struct {
	CustomerID string `json:"customerId" validate:"required,uuid4"`
	SiteID     string `json:"siteId" validate:"required,uuid4"`
	PaidCups   int    `json:"paidCups" validate:"min=0"`
	RedeemCups int    `json:"redeemCups" validate:"min=0"`
}

// ScanQR godoc
// @Summary Resolve a customer QR code
// @Tags staff
// @Accept json
// @Produce json
// @Param request body ScanQRRequest true "QR token and site"
// @Success 200 {object} service.CustomerScan
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /staff/scan [post]
// @Security BearerAuth
func (h *StaffHandler) ScanQR(c echo.Context) error {
	var req ScanQRRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	siteID, err := uuid.Parse(req.SiteID)
	if err != nil {
		return badRequest("invalid site id")
	}
	userID, err := contextUserID(c)
	if err != nil {
		return err
	}

	scan, err := h.staffService.ScanQR(c.Request().Context(), userID, req.QRToken, siteID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, scan)
}

// Transact godoc
// @Summary Record paid and redeemed cups
// @Tags staff
// @Accept json
// @Produce json
// @Param request body TransactRequest true "Cup counts"
// @Success 200 {object} service.RecordResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /staff/transact [post]
// @Security BearerAuth
func (h *StaffHandler) Transact(c echo.Context) error {
	var req TransactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return badRequest("invalid customer id")
	}
	siteID, err := uuid.Parse(req.SiteID)
	if err != nil {
		return badRequest("invalid site id")
	}
	userID, err := contextUserID(c)
	if err != nil {
		return err
	}

	result, err := h.ledgerService.Record(c.Request().Context(), userID, service.RecordInput{
		CustomerID: customerID,
		SiteID:     siteID,
		PaidCups:   req.PaidCups,
		RedeemCups: req.RedeemCups,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Sites godoc
// @Summary List the caller's assigned sites
// @Tags staff
// @Produce json
// @Success 200 {array} service.SiteView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /staff/sites [get]
// @Security BearerAuth
func (h *StaffHandler) Sites(c echo.Context) error {
	userID, err := contextUserID(c)
	if err != nil {
		return err
	}

	sites, err := h.staffService.Sites(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, sites)
}
