package linker

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/stratus-cloud/stratus/pkg/model"
)

// FindProjectsFromPath returns the project(s) owning a path, by
// longest-prefix match on the manifest's directory fields.
//
// A project whose directory is "." owns every path. Any other project owns
// the paths equal to, or strictly below, its directory: prefix matching is
// whole-segment, so "apps/web-admin" never matches a query for
// "apps/web/src". When several projects share the deepest matching
// directory they are all returned. An empty project list yields an empty
// result, never an error.
func FindProjectsFromPath(projects []model.ProjectLink, path string) []model.ProjectLink {
	if len(projects) == 0 {
		return nil
	}
	rel := NormalizePath(path)

	matches := make([]model.ProjectLink, 0, len(projects))
	for _, project := range projects {
		dir := NormalizePath(project.Directory)
		switch {
		case dir == model.RootDirectory:
			matches = append(matches, project)
		case rel == dir, strings.HasPrefix(rel, dir+"/"):
			matches = append(matches, project)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return directoryDepth(matches[i].Directory) > directoryDepth(matches[j].Directory)
	})
	deepest := NormalizePath(matches[0].Directory)

	result := matches[:0]
	for _, m := range matches {
		if NormalizePath(m.Directory) == deepest {
			result = append(result, m)
		}
	}
	return result
}

// NormalizePath brings a path onto the manifest convention: POSIX
// separators, relative, no leading "./", "." for the root itself.
func NormalizePath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return model.RootDirectory
	}
	return p
}

// directoryDepth counts path segments, with the root directory at zero.
func directoryDepth(dir string) int {
	dir = NormalizePath(dir)
	if dir == model.RootDirectory {
		return 0
	}
	return strings.Count(dir, "/") + 1
}

// RelativePath expresses an absolute path relative to a repository root,
// normalized to the manifest convention. Paths outside the root map to the
// root itself.
func RelativePath(rootPath, p string) string {
	rel, err := filepath.Rel(rootPath, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return model.RootDirectory
	}
	return NormalizePath(rel)
}
