// models/auth.go
package models

// MobileLoginRequest starts a login by requesting an OTP for a registered mobile
type MobileLoginRequest struct {
	Mobile string `json:"mobile" validate:"required"`
}

// RegisterRequest starts a new registration
type RegisterRequest struct {
	Mobile  string `json:"mobile" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// VerifyRequest completes a registration or login with the delivered OTP
type VerifyRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
}

// MessageResponse is the generic {msg} body
type MessageResponse struct {
	Msg string `json:"msg"`
}

// NotRegisteredResponse tells the client to branch into registration
type NotRegisteredResponse struct {
	Msg               string `json:"msg"`
	SuggestedEndpoint string `json:"suggestedEndpoint"`
}

// TokenResponse carries a freshly minted session token
type TokenResponse struct {
	Token string `json:"token"`
}
