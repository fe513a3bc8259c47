package model

import (
	"encoding/json"
	"fmt"
	"path"
)

const (
	// MetaDirName is the dot-directory holding per-repository metadata.
	MetaDirName = ".stratus"

	// ManifestName is the file recording which remote projects are linked
	// to which subdirectories of a repository.
	ManifestName = "repo.json"

	// ReadmeName is a human-readable note written next to the manifest.
	ReadmeName = "README.txt"

	// RootDirectory marks a project whose root is the repository root.
	RootDirectory = "."
)

// ProjectLink ties a remote project to a directory inside the repository.
// Directory is a POSIX-style path relative to the repository root,
// RootDirectory when the whole repository is the project.
type ProjectLink struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Directory string `json:"directory"`
}

// RepoProjectsConfig is the persisted manifest for a linked repository.
// It is written whole on (re-)link and never partially updated.
type RepoProjectsConfig struct {
	OrgID      string        `json:"orgId"`
	RemoteName string        `json:"remoteName"`
	Projects   []ProjectLink `json:"projects"`
}

// GetPathToManifest yields the manifest location below a repository root.
func GetPathToManifest(rootPath string) string {
	return path.Join(rootPath, MetaDirName, ManifestName)
}

// GetPathToManifestDir yields the metadata directory below a repository root.
func GetPathToManifestDir(rootPath string) string {
	return path.Join(rootPath, MetaDirName)
}

// MarshalManifest serializes a manifest the way it is stored on disk.
func MarshalManifest(c RepoProjectsConfig) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// UnmarshalManifest deserializes a manifest read from disk.
func UnmarshalManifest(data []byte) (RepoProjectsConfig, error) {
	var c RepoProjectsConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// ValidateManifest checks the invariants of a manifest before it is persisted.
func ValidateManifest(c RepoProjectsConfig) error {
	if c.OrgID == "" {
		return fmt.Errorf("empty field: manifest orgId is empty")
	}
	if c.RemoteName == "" {
		return fmt.Errorf("empty field: manifest remoteName is empty")
	}
	for _, p := range c.Projects {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("incomplete project link: %#v", p)
		}
		if p.Directory == "" {
			return fmt.Errorf("project %s: empty directory, use %q for the repository root", p.Name, RootDirectory)
		}
		if path.IsAbs(p.Directory) {
			return fmt.Errorf("project %s: directory %q must be relative to the repository root", p.Name, p.Directory)
		}
	}
	return nil
}
