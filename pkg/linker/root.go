// Package linker maps local working directories to linked remote projects.
//
// A repository root is the closest ancestor directory carrying either the
// metadata directory or a VCS marker. The manifest persisted below the root
// records which remote projects are linked to which subdirectories; the
// resolver in match.go answers "which project(s) own this path".
package linker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/stratus-cloud/stratus/pkg/linker/status"
	"github.com/stratus-cloud/stratus/pkg/model"
	"go.uber.org/zap"
)

// Resolver locates repository roots and reads/writes their manifests. All
// path probing goes through an injected afero filesystem so the whole
// resolver runs against synthetic trees in tests.
type Resolver struct {
	fs        afero.Fs
	home      string
	metaDir   string
	vcsConfig string
	prompter  Prompter
	l         *zap.Logger

	resolveScope func(context.Context) (model.Org, error)
}

// NewResolver builds a resolver
func NewResolver(opts ...Option) *Resolver {
	home, _ := os.UserHomeDir()
	r := &Resolver{
		fs:        afero.NewOsFs(),
		home:      home,
		metaDir:   model.MetaDirName,
		vcsConfig: filepath.FromSlash(defaultVCSConfig),
		l:         zap.NewNop(),
	}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

// Link is the outcome of searching upward from a working directory.
// RepoConfig is nil when the repository exists but has not been linked yet.
type Link struct {
	RootPath       string
	RepoConfigPath string
	RepoConfig     *model.RepoProjectsConfig
}

// FindRepoRoot walks upward from start and returns the first directory
// carrying a manifest or a VCS marker. The user's home directory is a hard
// stop: it is never treated as a repository root, even when it carries VCS
// metadata, and nothing above it is considered.
func (r *Resolver) FindRepoRoot(start string) (string, error) {
	home := filepath.Clean(r.home)
	for _, dir := range Ancestors(start) {
		if r.home != "" && dir == home {
			return "", status.ErrNoRepoRoot
		}
		if r.fileExists(filepath.Join(dir, r.metaDir, model.ManifestName)) {
			return dir, nil
		}
		if r.fileExists(filepath.Join(dir, r.vcsConfig)) {
			return dir, nil
		}
	}
	return "", status.ErrNoRepoRoot
}

func (r *Resolver) fileExists(p string) bool {
	fi, err := r.fs.Stat(p)
	return err == nil && !fi.IsDir()
}

// GetRepoLink composes FindRepoRoot with a read of the manifest. A missing
// manifest is benign (the repository is simply not linked yet); any other
// read or parse failure propagates.
func (r *Resolver) GetRepoLink(start string) (Link, error) {
	root, err := r.FindRepoRoot(start)
	if err != nil {
		return Link{}, err
	}
	link := Link{
		RootPath:       root,
		RepoConfigPath: filepath.Join(root, r.metaDir, model.ManifestName),
	}
	data, err := afero.ReadFile(r.fs, link.RepoConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return link, nil
		}
		return Link{}, status.ErrManifest.Wrap(err)
	}
	cfg, err := model.UnmarshalManifest(data)
	if err != nil {
		return Link{}, status.ErrManifest.Wrap(err)
	}
	link.RepoConfig = &cfg
	r.l.Debug("repository link resolved",
		zap.String("root", root),
		zap.Int("projects", len(cfg.Projects)))
	return link, nil
}
