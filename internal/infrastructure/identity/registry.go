// Package identity contains the outbound adapters that turn provider
// credentials into verified external identities.
package identity

import (
	"fmt"

	"github.com/mobilekit/auth-service/internal/core/domain"
	"github.com/mobilekit/auth-service/internal/core/ports"
)

// Registry holds the configured identity verifiers keyed by provider.
// It performs no verification logic itself.
type Registry struct {
	verifiers map[domain.AuthProvider]ports.IdentityVerifier
}

// NewRegistry registers the given verifiers by provider.
func NewRegistry(list ...ports.IdentityVerifier) *Registry {
	m := make(map[domain.AuthProvider]ports.IdentityVerifier, len(list))
	for _, v := range list {
		m[v.Provider()] = v
	}
	return &Registry{verifiers: m}
}

// Get returns the verifier for provider or an error if none is registered.
func (r *Registry) Get(provider domain.AuthProvider) (ports.IdentityVerifier, error) {
	v, ok := r.verifiers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown identity provider: %s", provider)
	}
	return v, nil
}
