package domain

import "time"

// Role is the authorization tag attached to a profile.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Profile is the per-principal record; Role is the only authorization signal.
type Profile struct {
	ID        string    `json:"id"`
	Username  *string   `json:"username"`
	Phone     *string   `json:"phone"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Account holds sign-in credentials for a principal.
type Account struct {
	ID           string
	Email        *string
	Phone        *string
	PasswordHash string
	CreatedAt    time.Time
}

// User is the authenticated principal as seen by callers.
type User struct {
	ID    string  `json:"id"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}
