package domain

import "time"

// AuthAction is the kind of authentication event recorded in the audit trail.
type AuthAction string

const (
	ActionRegister    AuthAction = "register"
	ActionLogin       AuthAction = "login"
	ActionSocialLogin AuthAction = "social_login"
	ActionLogout      AuthAction = "logout"
)

// AuthEvent is one entry in the audit trail. Recording is best-effort and
// asynchronous; it never affects the outcome of the request that produced it.
type AuthEvent struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Email     string       `json:"email,omitempty"`
	Action    AuthAction   `json:"action"`
	Provider  AuthProvider `json:"provider,omitempty"`
	SourceIP  string       `json:"source_ip,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
