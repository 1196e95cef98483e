package handler

import "github.com/mobilekit/auth-service/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email,max=255"`
	Password             string `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type socialLoginRequest struct {
	Provider      string `json:"provider"       validate:"required,oneof=google apple"`
	AccessToken   string `json:"access_token"   validate:"required_without=IdentityToken"`
	IdentityToken string `json:"identity_token" validate:"required_without=AccessToken"`
	Name          string `json:"name"           validate:"omitempty,max=255"`
	Email         string `json:"email"          validate:"omitempty,email"`
}

type authResponse struct {
	Message   string       `json:"message"`
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}
