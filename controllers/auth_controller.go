// controllers/auth_controller.go
package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"

	"github.com/lawmate/lawmate_backend/middleware"
	"github.com/lawmate/lawmate_backend/models"
	"github.com/lawmate/lawmate_backend/repositories"
	"github.com/lawmate/lawmate_backend/utils"
)

// AuthController drives the phone-number/OTP login and registration flows
type AuthController struct {
	Credentials repositories.CredentialRepository
	SMS         utils.SMSSender
	Redis       *redis.Client
	logger      *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(credentials repositories.CredentialRepository, sms utils.SMSSender, rdb *redis.Client) *AuthController {
	return &AuthController{
		Credentials: credentials,
		SMS:         sms,
		Redis:       rdb,
		logger:      log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// RequestLoginOTP sends a login OTP to a registered mobile number.
// POST /api/auth/mobile
func (ac *AuthController) RequestLoginOTP(c echo.Context) error {
	var req models.MobileLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Mobile number is required"})
	}

	mobile, err := utils.SanitizePhone(req.Mobile)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid mobile number format"})
	}

	ctx := c.Request().Context()

	_, err = ac.Credentials.FindByMobile(ctx, mobile)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.NotRegisteredResponse{
				Msg:               "Mobile number not registered.",
				SuggestedEndpoint: "/api/auth/register",
			})
		}
		ac.logger.Printf("Error looking up mobile %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		ac.logger.Printf("Error generating OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	now := time.Now()
	challenge := models.PhoneChallenge{
		Mobile:    mobile,
		OTP:       otp,
		ExpiresAt: utils.OTPExpiry(now),
		CreatedAt: now,
	}
	if err := ac.Credentials.UpsertChallenge(ctx, challenge); err != nil {
		ac.logger.Printf("Error storing login challenge for %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	// The challenge stays in place on delivery failure; the client retries
	// by re-requesting, which overwrites it with a fresh code.
	if err := ac.SMS.SendOTP(mobile, utils.LoginOTPMessage(otp)); err != nil {
		ac.logger.Printf("Error sending login OTP to %s: %v", mobile, err)
		return c.JSON(http.StatusBadGateway, models.MessageResponse{Msg: "Failed to send OTP"})
	}

	return c.JSON(http.StatusOK, models.MessageResponse{Msg: "OTP sent to your mobile"})
}

// Register stages a new registration and sends its OTP.
// POST /api/auth/register
func (ac *AuthController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Mobile, name, and address are required"})
	}

	mobile, err := utils.SanitizePhone(req.Mobile)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid mobile number format"})
	}

	ctx := c.Request().Context()

	_, err = ac.Credentials.FindByMobile(ctx, mobile)
	if err == nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "User already registered. Please login."})
	}
	if err != models.ErrNotFound {
		ac.logger.Printf("Error looking up mobile %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		ac.logger.Printf("Error generating OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	now := time.Now()
	pending := models.PendingUser{
		Mobile:     mobile,
		Name:       utils.SanitizeInput(req.Name),
		Address:    utils.SanitizeInput(req.Address),
		OTP:        otp,
		OTPExpires: utils.OTPExpiry(now),
		CreatedAt:  now,
	}
	if err := ac.Credentials.UpsertPending(ctx, pending); err != nil {
		ac.logger.Printf("Error staging registration for %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	if err := ac.SMS.SendOTP(mobile, utils.RegistrationOTPMessage(otp)); err != nil {
		ac.logger.Printf("Error sending registration OTP to %s: %v", mobile, err)
		return c.JSON(http.StatusBadGateway, models.MessageResponse{Msg: "Failed to send OTP"})
	}

	return c.JSON(http.StatusCreated, models.MessageResponse{Msg: "Registration initiated. OTP sent to your mobile"})
}

// VerifyRegistration promotes a staged registration and issues a token.
// POST /api/auth/register/verify
func (ac *AuthController) VerifyRegistration(c echo.Context) error {
	var req models.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Mobile and OTP are required"})
	}

	mobile, err := utils.SanitizePhone(req.Mobile)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid mobile number format"})
	}

	if err := utils.ValidateOTPAttempts(mobile, ac.Redis); err != nil {
		ac.logger.Printf("OTP attempt throttle for %s: %v", mobile, err)
		return c.JSON(http.StatusTooManyRequests, models.MessageResponse{Msg: "Too many OTP attempts"})
	}

	ctx := c.Request().Context()

	pending, err := ac.Credentials.FindPendingByMobile(ctx, mobile)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid or expired OTP"})
		}
		ac.logger.Printf("Error looking up pending registration for %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	if !utils.ValidOTP(pending.OTP, pending.OTPExpires, req.OTP, time.Now()) {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid or expired OTP"})
	}

	user, err := ac.Credentials.PromotePending(ctx, mobile)
	if err != nil {
		ac.logger.Printf("Error promoting pending registration for %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		ac.logger.Printf("Error signing token for %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	return c.JSON(http.StatusOK, models.TokenResponse{Token: token})
}

// VerifyLogin checks a login OTP and issues a token.
// POST /api/auth/verify
func (ac *AuthController) VerifyLogin(c echo.Context) error {
	var req models.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Mobile and OTP are required"})
	}

	mobile, err := utils.SanitizePhone(req.Mobile)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid mobile number format"})
	}

	if err := utils.ValidateOTPAttempts(mobile, ac.Redis); err != nil {
		ac.logger.Printf("OTP attempt throttle for %s: %v", mobile, err)
		return c.JSON(http.StatusTooManyRequests, models.MessageResponse{Msg: "Too many OTP attempts"})
	}

	ctx := c.Request().Context()

	challenge, err := ac.Credentials.FindChallenge(ctx, mobile)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid or expired OTP"})
		}
		ac.logger.Printf("Error looking up login challenge for %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	if !utils.ValidOTP(challenge.OTP, challenge.ExpiresAt, req.OTP, time.Now()) {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid or expired OTP"})
	}

	user, err := ac.Credentials.FindByMobile(ctx, mobile)
	if err != nil {
		ac.logger.Printf("Error looking up mobile %s after OTP check: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	// The challenge is single-use; clear it so the code can't be replayed
	if err := ac.Credentials.DeleteChallenge(ctx, mobile); err != nil {
		ac.logger.Printf("Error clearing login challenge for %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		ac.logger.Printf("Error signing token for %s: %v", mobile, err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	return c.JSON(http.StatusOK, models.TokenResponse{Token: token})
}
