package domain

import "time"

// User is a sales person account. PasswordHash is the bcrypt hash; plaintext
// never survives past the login request that carried it.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	PasswordHash string    `json:"-"`
	IsManager    bool      `json:"is_manager"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
