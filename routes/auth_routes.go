package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lawmate/lawmate_backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/mobile", authController.RequestLoginOTP)
	e.POST("/api/auth/register", authController.Register)
	e.POST("/api/auth/register/verify", authController.VerifyRegistration)
	e.POST("/api/auth/verify", authController.VerifyLogin)
}
