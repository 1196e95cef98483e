package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mobilekit/auth-service/internal/core/ports"
)

const testKid = "test-key-1"

// newAppleFixture returns a signing key and a fake JWKS endpoint publishing
// its public half under testKid.
func newAppleFixture(t *testing.T) (*rsa.PrivateKey, *httptest.Server) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": testKid,
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
			}},
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)

	return key, srv
}

func signAppleToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func appleClaimsFixture() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":   appleIssuer,
		"sub":   "apple-subject-1",
		"aud":   "com.example.app",
		"email": "ann@example.com",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestAppleVerifier_Success(t *testing.T) {
	key, srv := newAppleFixture(t)
	v := NewAppleVerifier("com.example.app", srv.URL, time.Second)

	signed := signAppleToken(t, key, appleClaimsFixture())
	identity, err := v.Verify(context.Background(), ports.SocialCredentials{
		IdentityToken: signed,
		Name:          "Ann",
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.SubjectID != "apple-subject-1" {
		t.Fatalf("unexpected subject: %s", identity.SubjectID)
	}
	if identity.Email != "ann@example.com" {
		t.Fatalf("unexpected email: %s", identity.Email)
	}
	if identity.Name != "Ann" {
		t.Fatalf("name must come from the request: %s", identity.Name)
	}
	if identity.AvatarURL != "" {
		t.Fatalf("apple provides no avatar, got %s", identity.AvatarURL)
	}
}

func TestAppleVerifier_EmailFallsBackToRequest(t *testing.T) {
	key, srv := newAppleFixture(t)
	v := NewAppleVerifier("com.example.app", srv.URL, time.Second)

	claims := appleClaimsFixture()
	delete(claims, "email")
	signed := signAppleToken(t, key, claims)

	identity, err := v.Verify(context.Background(), ports.SocialCredentials{
		IdentityToken: signed,
		Email:         "fallback@example.com",
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.Email != "fallback@example.com" {
		t.Fatalf("expected request email fallback, got %s", identity.Email)
	}
}

func TestAppleVerifier_MalformedToken(t *testing.T) {
	_, srv := newAppleFixture(t)
	v := NewAppleVerifier("com.example.app", srv.URL, time.Second)

	for _, token := range []string{"", "only-one-part", "two.parts", "a.b.c.d"} {
		if _, err := v.Verify(context.Background(), ports.SocialCredentials{IdentityToken: token}); err == nil {
			t.Fatalf("expected error for malformed token %q", token)
		}
	}
}

func TestAppleVerifier_BadSignature(t *testing.T) {
	_, srv := newAppleFixture(t)
	v := NewAppleVerifier("com.example.app", srv.URL, time.Second)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signed := signAppleToken(t, otherKey, appleClaimsFixture())

	if _, err := v.Verify(context.Background(), ports.SocialCredentials{IdentityToken: signed}); err == nil {
		t.Fatalf("expected signature verification failure")
	}
}

func TestAppleVerifier_WrongIssuer(t *testing.T) {
	key, srv := newAppleFixture(t)
	v := NewAppleVerifier("com.example.app", srv.URL, time.Second)

	claims := appleClaimsFixture()
	claims["iss"] = "https://evil.example.com"
	signed := signAppleToken(t, key, claims)

	if _, err := v.Verify(context.Background(), ports.SocialCredentials{IdentityToken: signed}); err == nil {
		t.Fatalf("expected issuer rejection")
	}
}

func TestAppleVerifier_ExpiredToken(t *testing.T) {
	key, srv := newAppleFixture(t)
	v := NewAppleVerifier("com.example.app", srv.URL, time.Second)

	claims := appleClaimsFixture()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	signed := signAppleToken(t, key, claims)

	if _, err := v.Verify(context.Background(), ports.SocialCredentials{IdentityToken: signed}); err == nil {
		t.Fatalf("expected expiry rejection")
	}
}

func TestAppleVerifier_WrongAudience(t *testing.T) {
	key, srv := newAppleFixture(t)
	v := NewAppleVerifier("com.example.other", srv.URL, time.Second)

	signed := signAppleToken(t, key, appleClaimsFixture())
	if _, err := v.Verify(context.Background(), ports.SocialCredentials{IdentityToken: signed}); err == nil {
		t.Fatalf("expected audience rejection")
	}
}
