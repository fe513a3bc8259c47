// Package status exports errors produced by the api package.
package status

import (
	"github.com/stratus-cloud/stratus/pkg/errors"
)

var (
	// ErrNotFound indicates the remote resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the token was missing or rejected
	ErrUnauthorized = errors.New("authentication required")

	// ErrInvalidResponse indicates the platform answered with a body this client cannot interpret
	ErrInvalidResponse = errors.New("invalid response from platform API")
)
