package usecases

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrStaleTransition   = errors.New("status transition would move backwards")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrBrokerUnavailable = errors.New("broker unavailable")
)
