package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ecom-backend/pkg/config"
)

// MintLocalToken signs an HS256 token for an account that authenticated with
// a password. Its subject is the account id. Customers carry the "customer"
// realm role and admins carry payload.AdminRole, so the same verifier and
// role mapping serve both local and identity-provider tokens.
func MintLocalToken(cfg config.JWTConfig, now time.Time, payload LocalTokenPayload) (string, error) {
	if err := checkMintInput(cfg, payload); err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}

	realmRole := strings.ToLower(payload.Role.String())
	if admin := strings.TrimSpace(payload.AdminRole); admin != "" && payload.Role.IsAdmin() {
		realmRole = admin
	}

	claims := IdentityClaims{
		Email:             payload.Email,
		Name:              payload.Name,
		PreferredUsername: payload.Name,
		RealmAccess:       RealmAccess{Roles: []string{realmRole}},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.UserID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

func checkMintInput(cfg config.JWTConfig, payload LocalTokenPayload) error {
	var err error
	if cfg.Secret == "" {
		err = multierr.Append(err, errors.New("jwt secret is required"))
	}
	if cfg.Issuer == "" {
		err = multierr.Append(err, errors.New("jwt issuer is required"))
	}
	if cfg.ExpirationMinutes <= 0 {
		err = multierr.Append(err, errors.New("jwt expiration must be positive"))
	}
	if payload.UserID == uuid.Nil {
		err = multierr.Append(err, errors.New("user id is required"))
	}
	if !payload.Role.IsValid() {
		err = multierr.Append(err, fmt.Errorf("invalid user role %q", payload.Role))
	}
	return err
}
