package storage

import "errors"

var (
	// ErrCredentialNotFound is returned when no enabled credential is stored for a provider
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrInvalidCredential is returned when a credential cannot be stored as given
	ErrInvalidCredential = errors.New("invalid credential")
)
