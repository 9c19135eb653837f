package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // argon2 encoded
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_on"`
}
