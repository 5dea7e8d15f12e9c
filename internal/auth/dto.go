package auth

import (
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/google/uuid"
)

// AuthenticateRequest carries local credentials.
type AuthenticateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthenticateResponse identifies the account behind valid credentials.
// AccessToken is set when local token signing is configured.
type AuthenticateResponse struct {
	UserID      uuid.UUID      `json:"user_id"`
	Role        enums.UserRole `json:"role"`
	AccessToken string         `json:"access_token,omitempty"`
}

// SignUpRequest creates a local customer account.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=256"`
}

// SignUpResponse returns the new account id.
type SignUpResponse struct {
	ID uuid.UUID `json:"id"`
}
