// Package status exports errors produced by the linker package.
package status

import (
	"github.com/stratus-cloud/stratus/pkg/errors"
)

var (
	// ErrNoRepoRoot indicates no repository root exists above the queried directory
	ErrNoRepoRoot = errors.New("could not determine Git repository root directory")

	// ErrNotLinked indicates linking was canceled before a manifest was written
	ErrNotLinked = errors.New("repository not linked")

	// ErrNoRemotes indicates the repository has no git remote to link against
	ErrNoRemotes = errors.New("no git remotes found")

	// ErrManifest indicates a manifest exists but cannot be read or parsed
	ErrManifest = errors.New("unreadable repository manifest")
)
