package linker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxDetectDepth bounds the workspace scan below the repository root.
const maxDetectDepth = 3

const detectConcurrency = 8

// DetectedProject is a local directory that looks like a deployable
// project, candidate for creation during linking.
type DetectedProject struct {
	Name      string
	Directory string // relative to the repository root, manifest convention
	Framework string
}

// frameworkMarkers maps a package dependency to a framework slug. Order
// matters: the first marker found in a manifest wins.
var frameworkMarkers = []struct {
	dep  string
	slug string
}{
	{"next", "nextjs"},
	{"gatsby", "gatsby"},
	{"nuxt", "nuxtjs"},
	{"@sveltejs/kit", "sveltekit"},
	{"@remix-run/dev", "remix"},
	{"astro", "astro"},
	{"@angular/core", "angular"},
	{"react-scripts", "create-react-app"},
	{"vite", "vite"},
	{"vue", "vue"},
}

type packageManifest struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// DetectProjects scans the repository for deployable packages, best effort.
// Unreadable or unparseable manifests are skipped; the caller treats a
// failed scan as zero detected projects.
func (r *Resolver) DetectProjects(ctx context.Context, rootPath string) ([]DetectedProject, error) {
	candidates, err := r.packagePaths(rootPath)
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		detected []DetectedProject
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(detectConcurrency)

	for _, p := range candidates {
		p := p
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			project, ok := r.inspectPackage(rootPath, p)
			if !ok {
				return nil
			}
			mu.Lock()
			detected = append(detected, project)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(detected, func(i, j int) bool {
		return detected[i].Directory < detected[j].Directory
	})
	return detected, nil
}

// packagePaths collects package.json files below root, a few levels deep,
// skipping dependency trees and dot directories.
func (r *Resolver) packagePaths(rootPath string) ([]string, error) {
	var paths []string
	err := afero.Walk(r.fs, rootPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep scanning
		}
		rel := RelativePath(rootPath, p)
		if info.IsDir() {
			base := filepath.Base(p)
			if p != rootPath && (base == "node_modules" || base[0] == '.') {
				return filepath.SkipDir
			}
			if depth := directoryDepth(rel); depth > maxDetectDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Base(p) == "package.json" {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// inspectPackage reads one package manifest and matches it to a framework.
func (r *Resolver) inspectPackage(rootPath, manifestPath string) (DetectedProject, bool) {
	data, err := afero.ReadFile(r.fs, manifestPath)
	if err != nil {
		r.l.Debug("skipping unreadable package manifest", zap.String("path", manifestPath), zap.Error(err))
		return DetectedProject{}, false
	}
	var pkg packageManifest
	if err := json.Unmarshal(data, &pkg); err != nil {
		r.l.Debug("skipping unparseable package manifest", zap.String("path", manifestPath), zap.Error(err))
		return DetectedProject{}, false
	}

	slug := ""
	for _, marker := range frameworkMarkers {
		if _, ok := pkg.Dependencies[marker.dep]; ok {
			slug = marker.slug
			break
		}
		if _, ok := pkg.DevDependencies[marker.dep]; ok {
			slug = marker.slug
			break
		}
	}
	if slug == "" {
		return DetectedProject{}, false
	}

	dir := RelativePath(rootPath, filepath.Dir(manifestPath))
	name := pkg.Name
	if name == "" {
		name = filepath.Base(filepath.Dir(manifestPath))
	}
	return DetectedProject{Name: name, Directory: dir, Framework: slug}, true
}
