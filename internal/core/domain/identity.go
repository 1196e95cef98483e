package domain

// ExternalIdentity is the provider-verified claim produced by an identity
// verifier. It contains facts only; resolution decisions happen in the
// auth service. Never persisted.
type ExternalIdentity struct {
	Provider  AuthProvider
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}
