// Package domain provides domain-specific error definitions and utilities.
package domain

import "errors"

// Sentinel causes carried by operational AppErrors so callers can branch with errors.Is.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
)
