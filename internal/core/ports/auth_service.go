package ports

import (
	"context"

	"github.com/mobilekit/auth-service/internal/core/domain"
)

// RegisterInput carries a shape-validated registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// SocialLoginInput carries a shape-validated federated login request.
type SocialLoginInput struct {
	Provider    domain.AuthProvider
	Credentials SocialCredentials
}

// AuthResult pairs the resolved user with a freshly minted bearer token.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	SocialLogin(ctx context.Context, in SocialLoginInput) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
}
