// Package status exports errors produced by the stream package.
package status

import (
	"github.com/stratus-cloud/stratus/pkg/errors"
)

var (
	// ErrFeedUnavailable signals a server-side feed failure, worth a fresh attempt
	ErrFeedUnavailable = errors.New("event feed temporarily unavailable")

	// ErrFeedRejected signals the feed refused the request, no retry will help
	ErrFeedRejected = errors.New("event feed rejected the request")
)
