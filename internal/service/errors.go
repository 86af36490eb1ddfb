package service

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrMissingFields       = errors.New("complete all required fields")
	ErrInvalidEmail        = errors.New("enter a valid email")
	ErrEmailTaken          = errors.New("a user with that email already exists")
	ErrInvalidRole         = errors.New("unknown role")
	ErrInvalidStatus       = errors.New("unknown status")
	ErrNoSelection         = errors.New("select users")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrAlreadySettled      = errors.New("booking already settled")
	ErrNotSettleable       = errors.New("cancelled bookings cannot be settled")
)
