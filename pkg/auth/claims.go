package auth

import (
	"strings"

	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RealmAccess is the nested role list carried by identity-provider tokens.
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// IdentityClaims is the claim set accepted on bearer routes. Tokens minted by
// the external identity provider and by /authenticate share this shape.
type IdentityClaims struct {
	Email             string      `json:"email,omitempty"`
	EmailVerified     bool        `json:"email_verified,omitempty"`
	PreferredUsername string      `json:"preferred_username,omitempty"`
	Name              string      `json:"name,omitempty"`
	RealmAccess       RealmAccess `json:"realm_access"`
	jwt.RegisteredClaims

	// local is set by Verifier for HS256 tokens minted by this service.
	local bool
}

// Identity is the verified caller as seen by the rest of the service.
// For Local identities Subject is the account id; otherwise it is the
// identity provider's subject.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Roles         []string
	Local         bool
}

// Identity flattens the claims. The display name falls back from name to
// preferred_username to email.
func (c IdentityClaims) Identity() Identity {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = strings.TrimSpace(c.PreferredUsername)
	}
	if name == "" {
		name = strings.TrimSpace(c.Email)
	}
	roles := make([]string, len(c.RealmAccess.Roles))
	copy(roles, c.RealmAccess.Roles)
	return Identity{
		Subject:       c.Subject,
		Email:         strings.TrimSpace(c.Email),
		EmailVerified: c.EmailVerified,
		Name:          name,
		Roles:         roles,
		Local:         c.local,
	}
}

// LocalTokenPayload captures the data available when minting a token for a
// local account.
type LocalTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   enums.UserRole
	// AdminRole is the realm role that marks administrators.
	AdminRole string
}
