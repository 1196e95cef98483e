package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/mobilekit/auth-service/internal/api/metrics"
	"github.com/mobilekit/auth-service/internal/core/domain"
	"github.com/mobilekit/auth-service/internal/core/ports"
)

// GoogleVerifier exchanges a Google OAuth access token for the profile held
// at the userinfo endpoint. The endpoint only answers for live, unexpired
// tokens, so a successful exchange attests the identity.
type GoogleVerifier struct {
	userInfoURL string
	timeout     time.Duration
}

func NewGoogleVerifier(userInfoURL string, timeout time.Duration) *GoogleVerifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleVerifier{userInfoURL: userInfoURL, timeout: timeout}
}

func (v *GoogleVerifier) Provider() domain.AuthProvider {
	return domain.ProviderGoogle
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, creds ports.SocialCredentials) (*domain.ExternalIdentity, error) {
	if creds.AccessToken == "" {
		return nil, errors.New("google: access token required")
	}

	start := time.Now()
	defer func() {
		metrics.SocialVerifyDuration.WithLabelValues(string(domain.ProviderGoogle)).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: creds.AccessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("google userinfo decode: %w", err)
	}
	if info.Sub == "" {
		return nil, errors.New("google userinfo missing subject")
	}

	return &domain.ExternalIdentity{
		Provider:  domain.ProviderGoogle,
		SubjectID: info.Sub,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}
