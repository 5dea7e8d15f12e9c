package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/angelmondragon/ecom-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrLocalTokensDisabled is returned for HMAC tokens when no local secret is configured.
	ErrLocalTokensDisabled = errors.New("local tokens are not accepted")
	// ErrNoKeySet is returned for asymmetric tokens when no JWKS is configured.
	ErrNoKeySet = errors.New("identity provider key set is not configured")
)

var acceptedAlgs = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodRS256.Alg(),
	jwt.SigningMethodRS384.Alg(),
	jwt.SigningMethodRS512.Alg(),
	jwt.SigningMethodPS256.Alg(),
	jwt.SigningMethodES256.Alg(),
}

// Verifier validates bearer tokens. HS256 tokens are checked against the
// local signing secret; asymmetric tokens against the identity provider's
// published key set.
type Verifier struct {
	localSecret []byte
	localIssuer string
	remote      jwt.Keyfunc
	identity    config.IdentityConfig
}

// NewVerifier fetches the configured JWKS (refreshed in the background until
// ctx is done) and returns a verifier accepting both token sources.
func NewVerifier(ctx context.Context, jwtCfg config.JWTConfig, idCfg config.IdentityConfig) (*Verifier, error) {
	var remote jwt.Keyfunc
	if idCfg.Enabled() {
		kf, err := keyfunc.NewDefaultCtx(ctx, []string{idCfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("loading jwks from %s: %w", idCfg.JWKSURL, err)
		}
		remote = kf.Keyfunc
	}
	return NewVerifierWithKeys(jwtCfg, idCfg, remote), nil
}

// NewVerifierWithKeys builds a verifier around an already resolved key source.
func NewVerifierWithKeys(jwtCfg config.JWTConfig, idCfg config.IdentityConfig, remote jwt.Keyfunc) *Verifier {
	v := &Verifier{
		localIssuer: jwtCfg.Issuer,
		remote:      remote,
		identity:    idCfg,
	}
	if jwtCfg.Secret != "" {
		v.localSecret = []byte(jwtCfg.Secret)
	}
	return v
}

// Verify checks the token signature and standard claims and returns the
// identity claims.
func (v *Verifier) Verify(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(
		strings.TrimSpace(tokenString),
		claims,
		v.keyFor,
		jwt.WithValidMethods(acceptedAlgs),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if _, local := token.Method.(*jwt.SigningMethodHMAC); local {
		if v.localIssuer != "" && claims.Issuer != v.localIssuer {
			return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
		}
		claims.local = true
	} else {
		if v.identity.Issuer != "" && claims.Issuer != v.identity.Issuer {
			return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
		}
		if v.identity.Audience != "" && !slices.Contains(claims.Audience, v.identity.Audience) {
			return nil, fmt.Errorf("token not issued for audience %q", v.identity.Audience)
		}
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token subject is required")
	}
	return claims, nil
}

func (v *Verifier) keyFor(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if v.localSecret == nil {
			return nil, ErrLocalTokensDisabled
		}
		return v.localSecret, nil
	}
	if v.remote == nil {
		return nil, ErrNoKeySet
	}
	return v.remote(token)
}
