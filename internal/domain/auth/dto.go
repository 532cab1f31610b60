package auth

import (
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/user"
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID     string
	EmployeeID *string
	Role       user.Role
}

// HasEmployee reports whether the token belongs to an employee profile.
func (c Claims) HasEmployee() bool {
	return c.EmployeeID != nil && *c.EmployeeID != ""
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
