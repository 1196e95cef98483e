package ports

import (
	"context"

	"github.com/mobilekit/auth-service/internal/core/domain"
)

// UserUpdate lists the mutable fields a repository update may touch. Nil
// pointers leave the stored value untouched.
type UserUpdate struct {
	Provider   *domain.AuthProvider
	ProviderID *string
	Avatar     *string
}

// UserRepository is the persistence contract for user records. Email and
// (provider, provider_id) uniqueness are enforced by the storage layer, not
// by callers; a racing duplicate insert must return domain.ErrEmailTaken.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByProvider(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
