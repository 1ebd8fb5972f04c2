package auth

import (
	"time"
)

// Account holds the credentials behind an identity.
type Account struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is an authenticated principal.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Event reports that the identity signed in on a client instance changed.
// A nil Identity means the client is signed out.
type Event struct {
	ClientID string
	Identity *Identity
	At       time.Time
}

// Session is returned by a successful sign-in or registration.
type Session struct {
	ClientID    string    `json:"client_id"`
	Identity    Identity  `json:"identity"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"john@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"john@example.com"`
	Password  string `json:"password" binding:"required,min=6" example:"password123"`
	FirstName string `json:"first_name" binding:"required" example:"John"`
	LastName  string `json:"last_name" binding:"required" example:"Doe"`
	Role      string `json:"role" binding:"required,oneof=manager player" example:"player"`
	TeamID    string `json:"team_id" binding:"required_if=Role player,omitempty,uuid" example:"3f1c2d7e-2b7a-4e1e-9a53-8d5f1c0a9b11"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"john@example.com"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6" example:"newpassword123"`
}
