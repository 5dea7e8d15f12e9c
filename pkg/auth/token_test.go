package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/angelmondragon/ecom-backend/pkg/config"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "ecom-backend",
		ExpirationMinutes: 30,
	}
}

func TestMintAndVerifyLocalToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintLocalToken(cfg, now, LocalTokenPayload{
		UserID:    userID,
		Email:     "ada@example.com",
		Name:      "ada",
		Role:      enums.UserRoleAdmin,
		AdminRole: "admin",
	})
	if err != nil {
		t.Fatalf("mint local token: %v", err)
	}

	verifier := NewVerifierWithKeys(cfg, config.IdentityConfig{}, nil)
	claims, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify local token: %v", err)
	}

	identity := claims.Identity()
	if identity.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, identity.Subject)
	}
	if !identity.Local {
		t.Fatalf("locally minted token must resolve as a local identity")
	}
	if identity.Email != "ada@example.com" || identity.Name != "ada" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if len(identity.Roles) != 1 || identity.Roles[0] != "admin" {
		t.Fatalf("expected admin realm role, got %v", identity.Roles)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.Time)
	}
}

func TestMintLocalTokenCustomerRole(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintLocalToken(cfg, time.Now(), LocalTokenPayload{
		UserID:    uuid.New(),
		Role:      enums.UserRoleCustomer,
		AdminRole: "admin",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := NewVerifierWithKeys(cfg, config.IdentityConfig{}, nil).Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got := claims.RealmAccess.Roles; len(got) != 1 || got[0] != "customer" {
		t.Fatalf("expected customer realm role, got %v", got)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintLocalToken(cfg, time.Now(), LocalTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := NewVerifierWithKeys(cfg, config.IdentityConfig{}, nil).Verify(token + "x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintLocalToken(cfg, time.Now().Add(-time.Hour), LocalTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = NewVerifierWithKeys(cfg, config.IdentityConfig{}, nil).Verify(token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyRejectsLocalTokenWithoutSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintLocalToken(cfg, time.Now(), LocalTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	verifier := NewVerifierWithKeys(config.JWTConfig{}, config.IdentityConfig{}, nil)
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected local token to be rejected without a secret")
	}
}

func TestMintLocalTokenInvalidRole(t *testing.T) {
	if _, err := MintLocalToken(testJWTConfig(), time.Now(), LocalTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, claims IdentityClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign rs256: %v", err)
	}
	return signed
}

func providerClaims(issuer string, audience ...string) IdentityClaims {
	now := time.Now()
	return IdentityClaims{
		Email:             "grace@example.com",
		EmailVerified:     true,
		PreferredUsername: "grace",
		RealmAccess:       RealmAccess{Roles: []string{"offline_access", "admin"}},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "kc-subject-1",
			Issuer:    issuer,
			Audience:  audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		},
	}
}

func TestVerifyProviderTokenAgainstKeySet(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	jwks, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test-key",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	kf, err := keyfunc.NewJWKSetJSON(jwks)
	if err != nil {
		t.Fatalf("load jwks: %v", err)
	}

	idCfg := config.IdentityConfig{Issuer: "https://idp.example.com/realms/shop", Audience: "account"}
	verifier := NewVerifierWithKeys(testJWTConfig(), idCfg, kf.Keyfunc)

	claims, err := verifier.Verify(signRS256(t, key, "test-key", providerClaims(idCfg.Issuer, "account")))
	if err != nil {
		t.Fatalf("verify provider token: %v", err)
	}
	identity := claims.Identity()
	if identity.Subject != "kc-subject-1" || identity.Name != "grace" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if identity.Local || !identity.EmailVerified {
		t.Fatalf("provider token must be non-local with verified email, got %+v", identity)
	}
	if len(identity.Roles) != 2 {
		t.Fatalf("expected realm roles to be preserved, got %v", identity.Roles)
	}

	if _, err := verifier.Verify(signRS256(t, key, "test-key", providerClaims("https://other.example.com", "account"))); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
	if _, err := verifier.Verify(signRS256(t, key, "test-key", providerClaims(idCfg.Issuer, "other"))); err == nil {
		t.Fatal("expected audience mismatch to be rejected")
	}
}

func TestVerifyProviderTokenWithoutKeySet(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	verifier := NewVerifierWithKeys(testJWTConfig(), config.IdentityConfig{}, nil)
	if _, err := verifier.Verify(signRS256(t, key, "k", providerClaims(""))); err == nil {
		t.Fatal("expected rs256 token to be rejected without a key set")
	}
}

func TestIdentityNameFallsBackToEmail(t *testing.T) {
	claims := IdentityClaims{Email: " solo@example.com "}
	if got := claims.Identity().Name; got != "solo@example.com" {
		t.Fatalf("expected email fallback, got %q", got)
	}
}

func TestMintLocalTokenReportsEveryProblem(t *testing.T) {
	_, err := MintLocalToken(config.JWTConfig{}, time.Now(), LocalTokenPayload{})
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"secret", "issuer", "expiration", "user id", "role"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}
