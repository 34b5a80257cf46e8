package models

// LoginRequest represents authentication login request.
// No password is checked; any non-blank username is accepted.
// Role is nil when the field is absent or null.
type LoginRequest struct {
	Username string  `json:"username" example:"alice"`
	Role     *string `json:"role,omitempty" example:"ADMIN"`
}
