package controllers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/lawmate/lawmate_backend/controllers"
	"github.com/lawmate/lawmate_backend/models"
	"github.com/lawmate/lawmate_backend/repositories"
	"github.com/lawmate/lawmate_backend/routes"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

// fakeSMS records delivered messages instead of calling a provider
type fakeSMS struct {
	mu       sync.Mutex
	failing  bool
	messages []string
}

func (f *fakeSMS) SendOTP(mobile, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return errors.New("sms provider unavailable")
	}
	f.messages = append(f.messages, message)
	return nil
}

// lastOTP extracts the code from the most recent message
func (f *fakeSMS) lastOTP() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.messages) == 0 {
		return ""
	}
	message := f.messages[len(f.messages)-1]
	return strings.TrimSpace(message[strings.LastIndex(message, ":")+1:])
}

func (f *fakeSMS) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type testServer struct {
	e     *echo.Echo
	creds *repositories.MemoryCredentialRepository
	convs *repositories.MemoryConversationRepository
	sms   *fakeSMS
}

func newTestServer(t *testing.T) *testServer {
	t.Setenv("JWT_SECRET", "test-secret")

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	creds := repositories.NewMemoryCredentialRepository()
	convs := repositories.NewMemoryConversationRepository()
	sms := &fakeSMS{}

	routes.RegisterAuthRoutes(e, controllers.NewAuthController(creds, sms, nil))
	routes.RegisterConversationRoutes(e, controllers.NewConversationController(convs))

	return &testServer{e: e, creds: creds, convs: convs, sms: sms}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// registerAndVerify walks a user through the full registration flow and
// returns the issued session token
func (s *testServer) registerAndVerify(t *testing.T, mobile, name, address string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"mobile": mobile, "name": name, "address": address,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/register/verify", "", map[string]string{
		"mobile": mobile, "otp": s.sms.lastOTP(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeConversation(t *testing.T, rec *httptest.ResponseRecorder) models.Conversation {
	t.Helper()

	var conversation models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conversation))
	return conversation
}
