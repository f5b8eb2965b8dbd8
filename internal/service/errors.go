package service

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	// ErrInvalidRequest covers every reset-flow precondition failure
	// (unknown request, wrong state, expired, attempts exhausted, wrong PIN)
	// so responses do not reveal which check failed.
	ErrInvalidRequest = errors.New("invalid or expired request")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrResendCooldown = errors.New("a PIN was sent recently, try again later")
	ErrMailDelivery   = errors.New("could not deliver email")
	ErrUserNotFound   = errors.New("user not found")
)
