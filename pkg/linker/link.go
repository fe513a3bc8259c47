package linker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/stratus-cloud/stratus/pkg/api"
	"github.com/stratus-cloud/stratus/pkg/linker/status"
	"github.com/stratus-cloud/stratus/pkg/model"
	"go.uber.org/zap"
)

// ProjectService is the slice of the platform API needed during linking.
// *api.Client satisfies it.
type ProjectService interface {
	ListProjectsApply(ctx context.Context, q api.ProjectsQuery, apply api.ApplyProjectFunc) error
	CreateProject(ctx context.Context, name string) (*model.Project, error)
}

// Prompter is the interactive surface of the linking flow. Implementations
// live with the CLI; tests script answers.
type Prompter interface {
	Confirm(message string, def bool) (bool, error)
	Select(message string, options []string, def string) (string, error)
	MultiSelect(message string, options []SelectOption) ([]int, error)
}

// SelectOption is one row of a multi-select prompt.
type SelectOption struct {
	Label   string
	Checked bool
}

// EnsureOptions tunes EnsureRepoLink.
type EnsureOptions struct {
	// Yes skips all confirmations
	Yes bool
	// Overwrite forces a re-link even when a manifest already exists
	Overwrite bool
}

// linkCandidate is one selectable row: an already-linked remote project or
// a locally detected directory to be created.
type linkCandidate struct {
	link     model.ProjectLink
	detected *DetectedProject
}

// EnsureRepoLink is the idempotent linking bootstrap. An existing manifest
// is returned as-is unless Overwrite is set; otherwise the repository is
// (re-)linked: local framework detection runs concurrently with the remote
// project lookup, the user confirms and selects projects, newly detected
// ones are created remotely, and the manifest is persisted whole.
//
// A canceled confirmation or an empty selection returns status.ErrNotLinked
// with no manifest written.
func (r *Resolver) EnsureRepoLink(ctx context.Context, svc ProjectService, start string, opts EnsureOptions) (*Link, error) {
	link, err := r.GetRepoLink(start)
	if err != nil {
		return nil, err
	}
	if link.RepoConfig != nil && !opts.Overwrite {
		return &link, nil
	}

	// kick off local detection early so it overlaps the network round trips
	detectedChan := make(chan []DetectedProject, 1)
	go func() {
		detected, derr := r.DetectProjects(ctx, link.RootPath)
		if derr != nil {
			r.l.Debug("framework detection failed, continuing without local candidates", zap.Error(derr))
			detected = nil
		}
		detectedChan <- detected
	}()

	if !opts.Yes {
		ok, perr := r.confirm(fmt.Sprintf("Link Git repository at %q to your projects?", link.RootPath), true)
		if perr != nil {
			return nil, perr
		}
		if !ok {
			return nil, status.ErrNotLinked
		}
	}

	org, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}

	remotes, err := r.GitRemotes(link.RootPath)
	if err != nil {
		return nil, err
	}
	remoteName, err := r.chooseRemote(remotes)
	if err != nil {
		return nil, err
	}
	if remoteName == "" {
		return nil, status.ErrNoRemotes
	}
	remoteURL := remotes[remoteName]

	existing := make([]model.ProjectLink, 0, 8)
	err = svc.ListProjectsApply(ctx, api.ProjectsQuery{RepoURL: remoteURL}, func(p model.Project) error {
		existing = append(existing, model.ProjectLink{
			ID:        p.ID,
			Name:      p.Name,
			Directory: NormalizePath(p.RootDirectory),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	detected := <-detectedChan

	candidates := buildCandidates(existing, detected)
	selected, err := r.selectCandidates(candidates, opts.Yes)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, status.ErrNotLinked
	}

	projects := make([]model.ProjectLink, 0, len(selected))
	for _, c := range selected {
		if c.detected != nil {
			created, cerr := svc.CreateProject(ctx, c.detected.Name)
			if cerr != nil {
				return nil, cerr
			}
			projects = append(projects, model.ProjectLink{
				ID:        created.ID,
				Name:      created.Name,
				Directory: c.detected.Directory,
			})
			continue
		}
		projects = append(projects, c.link)
	}

	cfg := model.RepoProjectsConfig{
		OrgID:      org.ID,
		RemoteName: remoteName,
		Projects:   projects,
	}
	if err := model.ValidateManifest(cfg); err != nil {
		return nil, err
	}
	if err := r.writeRepoLink(link.RootPath, cfg); err != nil {
		return nil, err
	}
	r.l.Info("repository linked",
		zap.String("root", link.RootPath),
		zap.String("remote", remoteName),
		zap.Int("projects", len(projects)))

	link.RepoConfig = &cfg
	return &link, nil
}

// buildCandidates merges already-linked projects with detected directories,
// dropping detections that coincide with an existing project's root.
func buildCandidates(existing []model.ProjectLink, detected []DetectedProject) []linkCandidate {
	taken := make(map[string]struct{}, len(existing))
	candidates := make([]linkCandidate, 0, len(existing)+len(detected))
	for _, p := range existing {
		taken[NormalizePath(p.Directory)] = struct{}{}
		candidates = append(candidates, linkCandidate{link: p})
	}
	for i := range detected {
		d := detected[i]
		if _, dup := taken[NormalizePath(d.Directory)]; dup {
			continue
		}
		candidates = append(candidates, linkCandidate{detected: &d})
	}
	return candidates
}

func (r *Resolver) selectCandidates(candidates []linkCandidate, yes bool) ([]linkCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if yes || r.prompter == nil {
		// non-interactive: take everything, existing and detected alike
		return candidates, nil
	}
	options := make([]SelectOption, 0, len(candidates))
	for _, c := range candidates {
		if c.detected != nil {
			options = append(options, SelectOption{
				Label: fmt.Sprintf("create %s (%s, %s)", c.detected.Name, c.detected.Directory, c.detected.Framework),
			})
			continue
		}
		options = append(options, SelectOption{
			Label:   fmt.Sprintf("%s (%s)", c.link.Name, c.link.Directory),
			Checked: true,
		})
	}
	picked, err := r.prompter.MultiSelect("Which projects should be linked?", options)
	if err != nil {
		return nil, err
	}
	selected := make([]linkCandidate, 0, len(picked))
	for _, i := range picked {
		if i < 0 || i >= len(candidates) {
			continue
		}
		selected = append(selected, candidates[i])
	}
	return selected, nil
}

func (r *Resolver) confirm(message string, def bool) (bool, error) {
	if r.prompter == nil {
		return def, nil
	}
	return r.prompter.Confirm(message, def)
}

func (r *Resolver) scope(ctx context.Context) (model.Org, error) {
	if r.resolveScope == nil {
		return model.Org{}, fmt.Errorf("no organization scope resolver configured")
	}
	return r.resolveScope(ctx)
}

// writeRepoLink persists the manifest, a human-readable note, and makes
// sure the metadata directory is ignored by the VCS.
func (r *Resolver) writeRepoLink(rootPath string, cfg model.RepoProjectsConfig) error {
	metaDir := filepath.Join(rootPath, r.metaDir)
	if err := r.fs.MkdirAll(metaDir, 0755); err != nil {
		return err
	}
	data, err := model.MarshalManifest(cfg)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(r.fs, filepath.Join(metaDir, model.ManifestName), append(data, '\n'), 0644); err != nil {
		return err
	}
	note := "This directory is added by the stratus CLI: it records which remote\n" +
		"projects are linked to this repository. You should not share it.\n"
	if err := afero.WriteFile(r.fs, filepath.Join(metaDir, model.ReadmeName), []byte(note), 0644); err != nil {
		return err
	}
	return r.ensureIgnored(rootPath)
}

// ensureIgnored appends the metadata directory to the repository ignore
// file, creating the file when absent.
func (r *Resolver) ensureIgnored(rootPath string) error {
	ignorePath := filepath.Join(rootPath, ".gitignore")
	data, err := afero.ReadFile(r.fs, ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == r.metaDir {
			return nil
		}
	}
	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += r.metaDir + "\n"
	return afero.WriteFile(r.fs, ignorePath, []byte(content), 0644)
}
