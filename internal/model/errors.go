package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user inactive")

	// Session related errors
	ErrSessionNotFound = errors.New("session not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
