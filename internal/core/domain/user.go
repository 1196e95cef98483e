package domain

import (
	"errors"
	"time"
)

// AuthProvider identifies the federated identity linked to a user, if any.
type AuthProvider string

const (
	ProviderNone   AuthProvider = ""
	ProviderGoogle AuthProvider = "google"
	ProviderApple  AuthProvider = "apple"
)

// Supported reports whether p is a provider users can sign in with.
func (p AuthProvider) Supported() bool {
	return p == ProviderGoogle || p == ProviderApple
}

var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrIdentityVerification = errors.New("social authentication failed")
var ErrUnauthenticated = errors.New("unauthenticated")
var ErrUserNotFound = errors.New("user not found")

// User is the durable identity record. A user holds at most one linked
// provider pair at a time; relinking overwrites the previous one.
type User struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Email           string       `json:"email,omitempty"`
	PasswordHash    string       `json:"-"`
	Provider        AuthProvider `json:"provider,omitempty"`
	ProviderID      string       `json:"provider_id,omitempty"`
	Avatar          string       `json:"avatar,omitempty"`
	EmailVerifiedAt *time.Time   `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a password.
// Pure federated accounts carry no hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
