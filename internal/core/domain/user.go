package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrInvalidEmail = errors.New("invalid email address")
var ErrPasswordTooShort = errors.New("password must be at least 6 characters")
var ErrUserExists = errors.New("a user with this email already exists")
var ErrUserNotFound = errors.New("user not found")

// User models an authenticated actor. Email is unique, stored lowercased.
// The password hash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
