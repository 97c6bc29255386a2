// utils/sms_service.go
package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSSender delivers one-time codes to a mobile number. The auth flow only
// depends on this interface; the concrete provider is swappable.
type SMSSender interface {
	SendOTP(mobile, message string) error
}

// LoginOTPMessage is the SMS body for a login code
func LoginOTPMessage(otp string) string {
	return fmt.Sprintf("Your login verification code is: %s", otp)
}

// RegistrationOTPMessage is the SMS body for a registration code
func RegistrationOTPMessage(otp string) string {
	return fmt.Sprintf("Your registration verification code is: %s", otp)
}

// SMSService sends messages through the BestSMSBulk HTTP API
type SMSService struct {
	Username string
	Password string
	SenderID string
	APIPath  string
	Client   *http.Client
}

// smsResponse is the provider's JSON reply
type smsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Cost      string `json:"cost"`
	} `json:"data"`
}

// NewSMSService creates an SMS service from environment configuration
func NewSMSService() *SMSService {
	apiPath := os.Getenv("SMS_API_PATH")
	if apiPath == "" {
		apiPath = "https://www.bestsmsbulk.com/bestsmsbulkapi/common/sendSmsAPI.php"
	}

	return &SMSService{
		Username: os.Getenv("SMS_USERNAME"),
		Password: os.Getenv("SMS_PASSWORD"),
		SenderID: os.Getenv("SMS_SENDER_ID"),
		APIPath:  apiPath,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendOTP sends a verification message to the given mobile number
func (s *SMSService) SendOTP(mobile, message string) error {
	if !strings.HasPrefix(mobile, "+") {
		mobile = "+" + mobile
	}

	params := url.Values{}
	params.Set("username", s.Username)
	params.Set("password", s.Password)
	params.Set("senderid", s.SenderID)
	params.Set("destination", mobile)
	params.Set("message", message)

	fullURL := fmt.Sprintf("%s?%s", s.APIPath, params.Encode())

	req, err := http.NewRequest("POST", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp smsResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// Some provider endpoints answer with a bare text line
		responseStr := strings.TrimSpace(string(body))
		if strings.Contains(strings.ToLower(responseStr), "success") ||
			strings.Contains(strings.ToLower(responseStr), "sent") {
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if smsResp.Status == "success" || smsResp.Status == "sent" {
		return nil
	}

	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}
