package config

import "errors"

var (
	// ErrMissingCredential is returned when no signing key is configured
	ErrMissingCredential = errors.New("missing signing credential: set PRIVATE_KEY in the environment or .env")

	// ErrInvalidCredential is returned when the signing key cannot be parsed
	ErrInvalidCredential = errors.New("invalid signing credential")

	// ErrUnknownNetwork is returned when a network has no RPC endpoint
	ErrUnknownNetwork = errors.New("unknown network")
)

// ErrMissingRPCURL is returned when a known network has no usable endpoint
var ErrMissingRPCURL = errors.New("missing RPC URL")
