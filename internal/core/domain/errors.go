package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("duplicate entry")
	ErrInternalServer = errors.New("internal server error")
)

// AuthErrors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("role does not match account")
	ErrInvalidRole        = errors.New("invalid role")
)

// CaseErrors
var (
	ErrCaseNotFound = errors.New("case not found")
)

// ModelErrors — failures of the external generative model
var (
	ErrModelUnavailable = errors.New("model unavailable")
)
