package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mobilekit/auth-service/internal/core/domain"
	"github.com/mobilekit/auth-service/internal/core/ports"
)

// AuthService implements the three authentication flows and the
// account-linking policy.
//
// Linking trusts the provider's email claim: a verified federated identity
// whose email matches an existing local account takes over that account
// without any re-authentication challenge. Hardening this requires proof of
// existing-account ownership before the link is written.
type AuthService struct {
	users     ports.UserRepository
	tokens    ports.TokenStore
	verifiers ports.VerifierRegistry
	logger    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenStore, verifiers ports.VerifierRegistry, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, verifiers: verifiers, logger: logger}
}

// Register creates a password account and mints its first token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Provider:     domain.ProviderNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			// Lost the race against a concurrent registration; the unique
			// index is the authority, the pre-check above is advisory.
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	token, err := s.mintOrCompensate(ctx, created)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return &ports.AuthResult{User: created, Token: token}, nil
}

// Login authenticates a password account. Unknown email, a pure federated
// account, and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if !user.HasPassword() {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: mint token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{User: user, Token: token}, nil
}

// SocialLogin verifies a federated credential and resolves it to a user:
// an existing (provider, subject) match, then an email link onto an existing
// account, then a fresh account. Every verification or persistence failure
// surfaces as domain.ErrIdentityVerification.
func (s *AuthService) SocialLogin(ctx context.Context, in ports.SocialLoginInput) (*ports.AuthResult, error) {
	verifier, err := s.verifiers.Get(in.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityVerification, err)
	}

	identity, err := verifier.Verify(ctx, in.Credentials)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", string(in.Provider)).Msg("identity verification failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityVerification, err)
	}

	user, created, err := s.resolveIdentity(ctx, identity, in.Credentials)
	if err != nil {
		s.logger.Error().Err(err).Str("provider", string(in.Provider)).Msg("identity resolution failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityVerification, err)
	}

	var token string
	if created {
		token, err = s.mintOrCompensate(ctx, user)
	} else {
		token, err = s.tokens.Mint(ctx, user.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityVerification, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("provider", string(identity.Provider)).
		Bool("created", created).
		Msg("social login resolved")
	return &ports.AuthResult{User: user, Token: token}, nil
}

// resolveIdentity returns the user for a verified identity, reporting whether
// a new record was created.
func (s *AuthService) resolveIdentity(ctx context.Context, identity *domain.ExternalIdentity, creds ports.SocialCredentials) (*domain.User, bool, error) {
	existing, err := s.users.FindByProvider(ctx, identity.Provider, identity.SubjectID)
	switch {
	case err == nil:
		// Repeat login: refresh the avatar only.
		updated, err := s.users.Update(ctx, existing.ID, ports.UserUpdate{Avatar: &identity.AvatarURL})
		if err != nil {
			return nil, false, fmt.Errorf("refresh avatar: %w", err)
		}
		return updated, false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, fmt.Errorf("lookup provider subject: %w", err)
	}

	if identity.Email != "" {
		byEmail, err := s.users.FindByEmail(ctx, identity.Email)
		switch {
		case err == nil:
			// Link the federated identity onto the existing account.
			// Last-linked wins; the password hash is left untouched.
			updated, err := s.users.Update(ctx, byEmail.ID, ports.UserUpdate{
				Provider:   &identity.Provider,
				ProviderID: &identity.SubjectID,
				Avatar:     &identity.AvatarURL,
			})
			if err != nil {
				return nil, false, fmt.Errorf("link account: %w", err)
			}
			return updated, false, nil
		case !errors.Is(err, domain.ErrUserNotFound):
			return nil, false, fmt.Errorf("lookup email: %w", err)
		}
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:            firstNonEmpty(identity.Name, creds.Name, "User"),
		Email:           identity.Email,
		Provider:        identity.Provider,
		ProviderID:      identity.SubjectID,
		Avatar:          identity.AvatarURL,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return created, true, nil
}

// Logout revokes exactly the presented token. Revoking an already-revoked
// token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return fmt.Errorf("logout: revoke token: %w", err)
	}
	return nil
}

// mintOrCompensate mints a token for a user created within the current
// request. Mongo and Redis share no transaction, so a mint failure deletes
// the fresh row to avoid leaving a user the caller never received a token
// for.
func (s *AuthService) mintOrCompensate(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.tokens.Mint(ctx, user.ID)
	if err == nil {
		return token, nil
	}
	if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
		s.logger.Error().Err(delErr).Str("user_id", user.ID).Msg("compensating delete failed, user row left without token")
	}
	return "", fmt.Errorf("mint token: %w", err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
