package auth

import "errors"

var (
	ErrMissingFields      = errors.New("complete all fields")
	ErrInvalidEmail       = errors.New("enter a valid email")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrFileTooLarge       = errors.New("ID file is too large")
	ErrUnsupportedFile    = errors.New("ID file must be a PNG or JPEG image")
	ErrEmailTaken         = errors.New("an account with that email exists, please log in")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrDemoDisabled       = errors.New("demo sign-in is disabled")
)
