package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrEmailExists           = errors.New("Email already exists. Please use a different email address.")
	ErrInvalidRole           = errors.New("Role must be farmer or investor")
)
