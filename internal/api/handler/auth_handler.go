package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mobilekit/auth-service/internal/api/metrics"
	"github.com/mobilekit/auth-service/internal/core/domain"
	"github.com/mobilekit/auth-service/internal/core/ports"
)

const tokenTypeBearer = "Bearer"

// AuthEventSink is the interface the handler uses to enqueue audit events.
type AuthEventSink interface {
	Enqueue(event domain.AuthEvent)
}

type AuthHandler struct {
	authService ports.AuthService
	events      AuthEventSink
}

func NewAuthHandler(authService ports.AuthService, events AuthEventSink) *AuthHandler {
	return &AuthHandler{authService: authService, events: events}
}

// Register creates a new password account and returns its first token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate_email").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()
	h.record(c, result.User, domain.ActionRegister, domain.ProviderNone)

	return c.JSON(http.StatusCreated, authResponse{
		Message:   "Registration successful",
		User:      result.User,
		Token:     result.Token,
		TokenType: tokenTypeBearer,
	})
}

// Login authenticates with email and password.
//
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("password", "invalid_credentials").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("password", "error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("password", "success").Inc()
	metrics.TokensIssuedTotal.Inc()
	h.record(c, result.User, domain.ActionLogin, domain.ProviderNone)

	return c.JSON(http.StatusOK, authResponse{
		Message:   "Login successful",
		User:      result.User,
		Token:     result.Token,
		TokenType: tokenTypeBearer,
	})
}

// SocialLogin authenticates via a federated identity provider.
//
// @Summary      Login with a social provider (Google/Apple)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      socialLoginRequest  true  "Provider credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/social [post]
func (h *AuthHandler) SocialLogin(c echo.Context) error {
	var req socialLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	provider := domain.AuthProvider(req.Provider)
	result, err := h.authService.SocialLogin(c.Request().Context(), ports.SocialLoginInput{
		Provider: provider,
		Credentials: ports.SocialCredentials{
			AccessToken:   req.AccessToken,
			IdentityToken: req.IdentityToken,
			Name:          req.Name,
			Email:         req.Email,
		},
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdentityVerification) {
			metrics.LoginsTotal.WithLabelValues(req.Provider, "verification_failed").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues(req.Provider, "error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues(req.Provider, "success").Inc()
	metrics.TokensIssuedTotal.Inc()
	h.record(c, result.User, domain.ActionSocialLogin, provider)

	return c.JSON(http.StatusOK, authResponse{
		Message:   "Social login successful",
		User:      result.User,
		Token:     result.Token,
		TokenType: tokenTypeBearer,
	})
}

// Logout revokes exactly the token presented on this request.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	token, err := ctxToken(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	metrics.TokensRevokedTotal.Inc()
	h.record(c, user, domain.ActionLogout, user.Provider)

	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Me returns the user bound to the presented token.
//
// @Summary      Get the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  userResponse
// @Failure      401   {object}  errorResponse
// @Router       /user [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// record enqueues an audit event; the sink is optional and never blocks.
func (h *AuthHandler) record(c echo.Context, user *domain.User, action domain.AuthAction, provider domain.AuthProvider) {
	if h.events == nil {
		return
	}
	h.events.Enqueue(domain.AuthEvent{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Action:    action,
		Provider:  provider,
		SourceIP:  c.RealIP(),
		Timestamp: time.Now().UTC(),
	})
}
