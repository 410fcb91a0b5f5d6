package model

import "time"

// Role names accepted in the role claim.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User represents an account as stored in the `users` table. Secrets
// (password hash and one-time tokens) never leave the server.
type User struct {
	ID                    uint64     `json:"id"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	Username              string     `json:"username"`
	PasswordHash          string     `json:"-"`
	Role                  string     `json:"role"`
	Picture               string     `json:"picture"`
	IsVerified            bool       `json:"is_verified"`
	VerificationToken     *string    `json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	ResetToken            *string    `json:"-"`
	ResetExpiresAt        *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Actor is the authenticated caller resolved from a bearer token. It is
// passed explicitly into every workflow call.
type Actor struct {
	ID         uint64 `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	IsVerified bool   `json:"is_verified"`
	Role       string `json:"role"`
}
