package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cuprewards/internal/service"
)

// AdminHandler handles site and staff administration.
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// CreateSiteRequest creates a store location.
type CreateSiteRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"max=512"`
}

// AddStaffRequest invites a new staff member.
type AddStaffRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Mobile    string `json:"mobile" validate:"omitempty,min=7,max=20"`
}

// SiteAssignmentRequest links a staff member and a site.
type SiteAssignmentRequest struct {
	SiteID string `json:"siteId" validate:"required,uuid4"`
}

// CreateSite godoc
// @Summary Create a site
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateSiteRequest true "Site fields"
// @Success 201 {object} service.SiteView
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/sites [post]
// @Security BearerAuth
func (h *AdminHandler) CreateSite(c echo.Context) error {
	var req CreateSiteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	site, err := h.adminService.CreateSite(c.Request().Context(), req.Name, req.Address)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, site)
}

// ListSites godoc
// @Summary List all sites
// @Tags admin
// @Produce json
// @Success 200 {array} service.SiteView
// @Router /admin/sites [get]
// @Security BearerAuth
func (h *AdminHandler) ListSites(c echo.Context) error {
	sites, err := h.adminService.ListSites(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, sites)
}

// AddStaff godoc
// @Summary Invite a staff member
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AddStaffRequest true "Staff identity"
// @Success 201 {object} service.StaffView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/staff [post]
// @Security BearerAuth
func (h *AdminHandler) AddStaff(c echo.Context) error {
	var req AddStaffRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	staff, err := h.adminService.AddStaff(c.Request().Context(), service.AddStaffInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mobile:    req.Mobile,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, staff)
}

// ResendInvite godoc
// @Summary Resend a staff invitation
// @Tags admin
// @Produce json
// @Param id path string true "Staff profile ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/staff/{id}/resend-invite [post]
// @Security BearerAuth
func (h *AdminHandler) ResendInvite(c echo.Context) error {
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.adminService.ResendInvite(c.Request().Context(), staffID); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "invitation sent"})
}

// ListStaff godoc
// @Summary List staff members
// @Tags admin
// @Produce json
// @Success 200 {array} service.StaffView
// @Router /admin/staff [get]
// @Security BearerAuth
func (h *AdminHandler) ListStaff(c echo.Context) error {
	staff, err := h.adminService.ListStaff(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, staff)
}

// AssignSite godoc
// @Summary Assign a staff member to a site
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Staff profile ID"
// @Param request body SiteAssignmentRequest true "Site"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/staff/{id}/sites [post]
// @Security BearerAuth
func (h *AdminHandler) AssignSite(c echo.Context) error {
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req SiteAssignmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	siteID, err := uuid.Parse(req.SiteID)
	if err != nil {
		return badRequest("invalid site id")
	}

	if err := h.adminService.AssignSite(c.Request().Context(), staffID, siteID); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "site assigned"})
}

// RemoveSite godoc
// @Summary Remove a staff member from a site
// @Tags admin
// @Produce json
// @Param id path string true "Staff profile ID"
// @Param siteId path string true "Site ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/staff/{id}/sites/{siteId} [delete]
// @Security BearerAuth
func (h *AdminHandler) RemoveSite(c echo.Context) error {
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	siteID, err := pathUUID(c, "siteId")
	if err != nil {
		return err
	}

	if err := h.adminService.RemoveSite(c.Request().Context(), staffID, siteID); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "site removed"})
}

// Analytics godoc
// @Summary Live chain-wide cup counters
// @Tags admin
// @Produce json
// @Success 200 {object} service.LiveAnalytics
// @Router /admin/analytics/live [get]
// @Security BearerAuth
func (h *AdminHandler) Analytics(c echo.Context) error {
	analytics, err := h.adminService.Analytics(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, analytics)
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badRequest("invalid " + name)
	}
	return id, nil
}
