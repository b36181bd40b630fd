package models

import "errors"

// Sentinel errors shared by repos and services. Handlers map them to
// HTTP status codes with errors.Is, so wrap with fmt.Errorf("...: %w", err).
var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrGateway      = errors.New("upstream gateway error")
)
