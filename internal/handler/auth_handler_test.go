package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/middleware"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/service"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/testutil"
	"github.com/google/uuid"
)

func newAuthHandlerFixture() (*AuthHandler, *service.AuthService, *testutil.MockUserRepository, *testutil.MockEmailSender) {
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo, "test-secret", time.Hour)
	email := &testutil.MockEmailSender{}
	return NewAuthHandler(authService, email), authService, userRepo, email
}

func seedAdmin(t *testing.T, repo *testutil.MockUserRepository, email, password string) *domain.User {
	t.Helper()
	hash, err := service.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  "Admin",
		PasswordHash: hash,
	}
	repo.AddUser(user)
	return user
}

// withUser attaches an authenticated user the way the auth middleware does
func withUser(c echo.Context, user *domain.User) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserKey, user)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestLoginHandler_Success(t *testing.T) {
	e := echo.New()
	handler, _, userRepo, _ := newAuthHandlerFixture()
	seedAdmin(t, userRepo, "admin@example.com", "password123")

	reqBody := `{"email": "admin@example.com", "password": "password123"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/login", reqBody), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Token == "" {
		t.Error("Expected a session token")
	}
	if response.User == nil || response.User.Email != "admin@example.com" {
		t.Errorf("Expected user in response, got %+v", response.User)
	}
	if !response.ExpiresAt.After(time.Now()) {
		t.Errorf("Expected future expiry, got %s", response.ExpiresAt)
	}
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	e := echo.New()
	handler, _, userRepo, _ := newAuthHandlerFixture()
	seedAdmin(t, userRepo, "admin@example.com", "password123")

	reqBody := `{"email": "admin@example.com", "password": "wrong"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/login", reqBody), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestLogoutHandler_Success(t *testing.T) {
	e := echo.New()
	handler, authService, userRepo, _ := newAuthHandlerFixture()
	user := seedAdmin(t, userRepo, "admin@example.com", "password123")

	result, err := authService.Login("admin@example.com", "password123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withUser(c, user)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	// The old token no longer verifies
	if _, err := authService.VerifyToken(result.Token); err == nil {
		t.Error("Expected token to be invalid after logout")
	}
}

func TestMeHandler(t *testing.T) {
	e := echo.New()
	handler, _, userRepo, _ := newAuthHandlerFixture()
	user := seedAdmin(t, userRepo, "admin@example.com", "password123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withUser(c, user)

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Email != "admin@example.com" {
		t.Errorf("Expected admin@example.com, got %s", response.Email)
	}
}

func TestMeHandler_Unauthenticated(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newAuthHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestChangePasswordHandler_Success(t *testing.T) {
	e := echo.New()
	handler, authService, userRepo, _ := newAuthHandlerFixture()
	user := seedAdmin(t, userRepo, "admin@example.com", "password123")

	reqBody := `{"currentPassword": "password123", "newPassword": "newpassword456"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/change-password", reqBody), rec)
	withUser(c, user)

	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	if _, err := authService.Login("admin@example.com", "newpassword456"); err != nil {
		t.Errorf("Expected login with new password to succeed, got %v", err)
	}
}

func TestChangePasswordHandler_WrongCurrent(t *testing.T) {
	e := echo.New()
	handler, _, userRepo, _ := newAuthHandlerFixture()
	user := seedAdmin(t, userRepo, "admin@example.com", "password123")

	reqBody := `{"currentPassword": "wrong", "newPassword": "newpassword456"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/change-password", reqBody), rec)
	withUser(c, user)

	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestChangePasswordHandler_TooShort(t *testing.T) {
	e := echo.New()
	handler, _, userRepo, _ := newAuthHandlerFixture()
	user := seedAdmin(t, userRepo, "admin@example.com", "password123")

	reqBody := `{"currentPassword": "password123", "newPassword": "short"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/change-password", reqBody), rec)
	withUser(c, user)

	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestForgotPasswordHandler_SendsMail(t *testing.T) {
	e := echo.New()
	handler, _, userRepo, email := newAuthHandlerFixture()
	seedAdmin(t, userRepo, "admin@example.com", "password123")

	reqBody := `{"email": "admin@example.com"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/forgot-password", reqBody), rec)

	if err := handler.ForgotPassword(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	if len(email.Sent) != 1 {
		t.Fatalf("Expected 1 mail sent, got %d", len(email.Sent))
	}
	sent := email.Sent[0]
	if sent.To[0] != "admin@example.com" {
		t.Errorf("Expected mail to admin@example.com, got %v", sent.To)
	}
	if !strings.Contains(sent.Body, "Your password reset code is: ") {
		t.Errorf("Expected reset code in mail body, got %q", sent.Body)
	}
}

func TestForgotPasswordHandler_UnknownEmailStillNoContent(t *testing.T) {
	e := echo.New()
	handler, _, _, email := newAuthHandlerFixture()

	reqBody := `{"email": "nobody@example.com"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/forgot-password", reqBody), rec)

	if err := handler.ForgotPassword(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if len(email.Sent) != 0 {
		t.Errorf("Expected no mail for unknown account, got %d", len(email.Sent))
	}
}

func TestResetPasswordHandler_Success(t *testing.T) {
	e := echo.New()
	handler, authService, userRepo, _ := newAuthHandlerFixture()
	seedAdmin(t, userRepo, "admin@example.com", "password123")

	token, _, err := authService.ForgotPassword("admin@example.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	reqBody := `{"email": "admin@example.com", "token": "` + token + `", "newPassword": "newpassword456"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/reset-password", reqBody), rec)

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	if _, err := authService.Login("admin@example.com", "newpassword456"); err != nil {
		t.Errorf("Expected login with reset password to succeed, got %v", err)
	}
}

func TestResetPasswordHandler_BadToken(t *testing.T) {
	e := echo.New()
	handler, authService, userRepo, _ := newAuthHandlerFixture()
	seedAdmin(t, userRepo, "admin@example.com", "password123")

	if _, _, err := authService.ForgotPassword("admin@example.com"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	reqBody := `{"email": "admin@example.com", "token": "deadbeef", "newPassword": "newpassword456"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/reset-password", reqBody), rec)

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
