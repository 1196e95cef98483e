package ports

import (
	"context"

	"github.com/mobilekit/auth-service/internal/core/domain"
)

// SocialCredentials is the provider material supplied by the client.
// Name and Email are client-reported fallbacks used only when the verified
// identity omits them (Apple does not repeat them on every login).
type SocialCredentials struct {
	AccessToken   string
	IdentityToken string
	Name          string
	Email         string
}

// IdentityVerifier exchanges provider credentials for a verified
// ExternalIdentity. Implementations return identity facts only and make no
// account decisions.
type IdentityVerifier interface {
	Provider() domain.AuthProvider
	Verify(ctx context.Context, creds SocialCredentials) (*domain.ExternalIdentity, error)
}

// VerifierRegistry resolves the verifier for a provider. The set of
// providers is closed: adding one means adding an IdentityVerifier
// implementation and registering it, not branching in the auth service.
type VerifierRegistry interface {
	Get(provider domain.AuthProvider) (IdentityVerifier, error)
}
