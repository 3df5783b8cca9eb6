package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"cuprewards/internal/auth"
	"cuprewards/internal/config"
	"cuprewards/internal/handler"
	"cuprewards/internal/middleware"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	tokens *auth.TokenService,
	users repository.UserRepository,
	authHandler *handler.AuthHandler,
	customerHandler *handler.CustomerHandler,
	staffHandler *handler.StaffHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/staff/password", authHandler.StaffSetPassword)

	// Signup steps gated by the pending capability token
	pending := api.Group("/auth/signup", middleware.PendingSignup(tokens))
	pending.POST("/verify", authHandler.VerifyOTP)
	pending.POST("/resend", authHandler.ResendOTP)
	pending.POST("/password", authHandler.SetPassword)

	// Secured routes: signature check, then live user-state check
	secured := api.Group("", middleware.JWT(tokens), middleware.Guard(users))

	customer := secured.Group("/customer", middleware.RequireRole(model.RoleCustomer))
	customer.POST("/qr-token", customerHandler.QRToken)
	customer.GET("/summary", customerHandler.Summary)
	customer.GET("/history", customerHandler.History)

	staff := secured.Group("/staff", middleware.RequireRole(model.RoleStaff))
	staff.POST("/scan", staffHandler.ScanQR)
	staff.POST("/transact", staffHandler.Transact)
	staff.GET("/sites", staffHandler.Sites)

	admin := secured.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/sites", adminHandler.CreateSite)
	admin.GET("/sites", adminHandler.ListSites)
	admin.POST("/staff", adminHandler.AddStaff)
	admin.GET("/staff", adminHandler.ListStaff)
	admin.POST("/staff/:id/resend-invite", adminHandler.ResendInvite)
	admin.POST("/staff/:id/sites", adminHandler.AssignSite)
	admin.DELETE("/staff/:id/sites/:siteId", adminHandler.RemoveSite)
	admin.GET("/analytics/live", adminHandler.Analytics)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
