package model

import (
	"time"
)

// User is a registered account. Emails are stored lowercased and are unique.
// The password hash and pending reset fields never appear in JSON output.
type User struct {
	ID                  string     `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Country             *string    `db:"country" json:"country,omitempty"`
	ResetTokenHash      *string    `db:"reset_token_hash" json:"-"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
}

// PublicUser is the projection of a User that is safe to return to clients.
type PublicUser struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Country *string `json:"country,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Country: u.Country,
	}
}

type CreateUserParams struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Country      *string
}
