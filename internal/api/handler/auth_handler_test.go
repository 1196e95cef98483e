package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mobilekit/auth-service/internal/core/domain"
	"github.com/mobilekit/auth-service/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	socialFn   func(ctx context.Context, in ports.SocialLoginInput) (*ports.AuthResult, error)
	logoutFn   func(ctx context.Context, token string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) SocialLogin(ctx context.Context, in ports.SocialLoginInput) (*ports.AuthResult, error) {
	return s.socialFn(ctx, in)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

type stubSink struct {
	events []domain.AuthEvent
}

func (s *stubSink) Enqueue(event domain.AuthEvent) {
	s.events = append(s.events, event)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Name != "Ann" || in.Email != "ann@example.com" || in.Password != "password1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				User:  &domain.User{ID: "u1", Name: in.Name, Email: in.Email},
				Token: "tok123",
			}, nil
		},
	}
	sink := &stubSink{}
	h := NewAuthHandler(stub, sink)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"name":"Ann","email":"ann@example.com","password":"password1","password_confirmation":"password1"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Registration successful" || resp["token"] != "tok123" || resp["token_type"] != "Bearer" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "ann@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if len(sink.events) != 1 || sink.events[0].Action != domain.ActionRegister {
		t.Fatalf("expected one register audit event, got %+v", sink.events)
	}
}

func TestAuthHandler_Register_PasswordConfirmationMismatch(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"name":"Ann","email":"ann@example.com","password":"password1","password_confirmation":"different1"}`)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"name":"Ann","email":"ann@example.com","password":"short","password_confirmation":"short"}`)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	sink := &stubSink{}
	h := NewAuthHandler(stub, sink)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"name":"Bob","email":"bob@example.com","password":"password1","password_confirmation":"password1"}`)

	err := h.Register(c)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken passed to the error handler, got %v", err)
	}
	if len(sink.events) != 0 {
		t.Fatalf("no audit event on failure")
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "ann@example.com" || password != "password1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.AuthResult{User: &domain.User{ID: "u1", Email: email}, Token: "tok123"}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"ann@example.com","password":"password1"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Login successful" || resp["token"] != "tok123" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, nil)

	c, _ := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"ann@example.com","password":"wrongpass"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	c, _ := newTestContext(t, http.MethodPost, "/auth/login", "not-json")

	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_SocialLogin_Success(t *testing.T) {
	stub := &stubAuthService{
		socialFn: func(ctx context.Context, in ports.SocialLoginInput) (*ports.AuthResult, error) {
			if in.Provider != domain.ProviderGoogle || in.Credentials.AccessToken != "gtoken" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				User:  &domain.User{ID: "u1", Provider: domain.ProviderGoogle, ProviderID: "g1"},
				Token: "tok123",
			}, nil
		},
	}
	sink := &stubSink{}
	h := NewAuthHandler(stub, sink)

	c, rec := newTestContext(t, http.MethodPost, "/auth/social",
		`{"provider":"google","access_token":"gtoken"}`)

	if err := h.SocialLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(sink.events) != 1 || sink.events[0].Provider != domain.ProviderGoogle {
		t.Fatalf("expected social audit event, got %+v", sink.events)
	}
}

func TestAuthHandler_SocialLogin_IdentityTokenOnly(t *testing.T) {
	stub := &stubAuthService{
		socialFn: func(ctx context.Context, in ports.SocialLoginInput) (*ports.AuthResult, error) {
			if in.Provider != domain.ProviderApple || in.Credentials.IdentityToken != "apple-jwt" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{User: &domain.User{ID: "u1"}, Token: "tok123"}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/social",
		`{"provider":"apple","identity_token":"apple-jwt"}`)

	if err := h.SocialLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_SocialLogin_NoCredential(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	c, _ := newTestContext(t, http.MethodPost, "/auth/social", `{"provider":"google"}`)

	err := h.SocialLogin(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAuthHandler_SocialLogin_UnsupportedProvider(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	c, _ := newTestContext(t, http.MethodPost, "/auth/social",
		`{"provider":"github","access_token":"tok"}`)

	err := h.SocialLogin(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAuthHandler_Logout_RevokesCurrentToken(t *testing.T) {
	var revoked string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			revoked = token
			return nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/auth/logout", "")
	c.Set(CtxUserKey, &domain.User{ID: "u1"})
	c.Set(CtxTokenKey, "tok123")

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if revoked != "tok123" {
		t.Fatalf("expected presented token revoked, got %q", revoked)
	}
}

func TestAuthHandler_Logout_WithoutAuthContext(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	c, _ := newTestContext(t, http.MethodPost, "/auth/logout", "")

	err := h.Logout(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	c, rec := newTestContext(t, http.MethodGet, "/user", "")
	c.Set(CtxUserKey, &domain.User{ID: "u1", Name: "Ann", Email: "ann@example.com"})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "ann@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
}
