package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mobilekit/auth-service/internal/api/metrics"
	"github.com/mobilekit/auth-service/internal/core/domain"
	"github.com/mobilekit/auth-service/internal/core/ports"
)

const appleIssuer = "https://appleid.apple.com"

// AppleVerifier validates the Sign in with Apple identity token: structural
// decode, then signature verification against Apple's published JWKS before
// any claim is trusted. Apple only sends name (and sometimes email) on the
// first authorization, so both fall back to the client-reported values.
type AppleVerifier struct {
	audience string
	jwks     *jwksCache
}

// NewAppleVerifier builds a verifier fetching keys from jwksURL. audience is
// the expected aud claim (the app's bundle id); empty skips that check.
func NewAppleVerifier(audience, jwksURL string, timeout time.Duration) *AppleVerifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AppleVerifier{
		audience: audience,
		jwks:     newJWKSCache(jwksURL, timeout),
	}
}

func (v *AppleVerifier) Provider() domain.AuthProvider {
	return domain.ProviderApple
}

type appleClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *AppleVerifier) Verify(ctx context.Context, creds ports.SocialCredentials) (*domain.ExternalIdentity, error) {
	if creds.IdentityToken == "" {
		return nil, errors.New("apple: identity token required")
	}
	if strings.Count(creds.IdentityToken, ".") != 2 {
		return nil, errors.New("apple: identity token is not a three-segment token")
	}

	start := time.Now()
	defer func() {
		metrics.SocialVerifyDuration.WithLabelValues(string(domain.ProviderApple)).Observe(time.Since(start).Seconds())
	}()

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(appleIssuer),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &appleClaims{}
	token, err := jwt.ParseWithClaims(creds.IdentityToken, claims, v.keyFunc(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("apple identity token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("apple identity token rejected")
	}
	if claims.Subject == "" {
		return nil, errors.New("apple identity token missing sub claim")
	}

	email := claims.Email
	if email == "" {
		email = creds.Email
	}

	return &domain.ExternalIdentity{
		Provider:  domain.ProviderApple,
		SubjectID: claims.Subject,
		Email:     email,
		Name:      creds.Name,
		AvatarURL: "",
	}, nil
}

// keyFunc resolves the RSA public key named by the token's kid header.
func (v *AppleVerifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header missing kid")
		}
		return v.jwks.publicKey(ctx, kid)
	}
}

// jwksCache fetches and caches Apple's signing keys.
type jwksCache struct {
	url        string
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

func newJWKSCache(url string, timeout time.Duration) *jwksCache {
	return &jwksCache{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		keys:       make(map[string]*rsa.PublicKey),
	}
}

type jwksDocument struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (c *jwksCache) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	if key, ok := c.keys[kid]; ok && time.Now().Before(c.expiresAt) {
		c.mu.RUnlock()
		return key, nil
	}
	c.mu.RUnlock()

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if key, ok := c.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("no signing key with kid %q", kid)
}

func (c *jwksCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("jwks request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.expiresAt = time.Now().Add(24 * time.Hour)
	c.mu.Unlock()
	return nil
}

func parseRSAPublicKey(nStr, eStr string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
