package validators

import (
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid auth token")

const bearerScheme = "bearer"

// BearerToken returns the credential of a "Bearer <token>" Authorization
// value. The scheme is case-insensitive.
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], bearerScheme) {
		return "", ErrInvalidToken
	}
	return fields[1], nil
}
