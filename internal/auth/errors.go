package auth

import "errors"

var (
	ErrCredentialsRequired = errors.New("Username and password are required")
	ErrInvalidUsername     = errors.New("Invalid Username")
	ErrIncorrectPassword   = errors.New("Incorrect Password")
	ErrInactiveUser        = errors.New("User account is inactive")
	ErrNotAuthenticated    = errors.New("Not authenticated")
)
