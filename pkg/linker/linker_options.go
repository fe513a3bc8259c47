package linker

import (
	"context"

	"github.com/spf13/afero"
	"github.com/stratus-cloud/stratus/pkg/model"
	"go.uber.org/zap"
)

// defaultVCSConfig is the marker file identifying a git repository root.
const defaultVCSConfig = ".git/config"

// Option is a functor to define resolver settings
type Option func(*Resolver)

// WithFs injects the filesystem the resolver works against (default: the OS
// filesystem; tests use afero.NewMemMapFs)
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithHome sets the user home directory, the hard stop of the upward walk
func WithHome(home string) Option {
	return func(r *Resolver) {
		r.home = home
	}
}

// WithMetaDir overrides the metadata directory name (default model.MetaDirName)
func WithMetaDir(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.metaDir = name
		}
	}
}

// WithVCSConfig overrides the VCS marker file (default ".git/config")
func WithVCSConfig(rel string) Option {
	return func(r *Resolver) {
		if rel != "" {
			r.vcsConfig = rel
		}
	}
}

// WithPrompter injects the interactive prompter used during linking
func WithPrompter(p Prompter) Option {
	return func(r *Resolver) {
		if p != nil {
			r.prompter = p
		}
	}
}

// WithScopeResolver injects the callback resolving the org/team scope to
// link under
func WithScopeResolver(fn func(context.Context) (model.Org, error)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.resolveScope = fn
		}
	}
}

// WithLogger injects a logger on this resolver
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.l = l
		}
	}
}
