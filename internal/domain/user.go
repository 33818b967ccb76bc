package domain

import (
	"errors"
	"time"
)

// User is an account holder. Statements reference users by ID.
type User struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	Name           string
	Email          string
	HashedPassword string
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
