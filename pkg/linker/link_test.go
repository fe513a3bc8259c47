package linker

import (
	"context"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stratus-cloud/stratus/pkg/api"
	"github.com/stratus-cloud/stratus/pkg/errors"
	"github.com/stratus-cloud/stratus/pkg/linker/status"
	"github.com/stratus-cloud/stratus/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjectService struct {
	remote   []model.Project
	listErr  error
	created  []string
	createID int
	lastURL  string
}

func (f *fakeProjectService) ListProjectsApply(ctx context.Context, q api.ProjectsQuery, apply api.ApplyProjectFunc) error {
	f.lastURL = q.RepoURL
	if f.listErr != nil {
		return f.listErr
	}
	for _, p := range f.remote {
		if err := apply(p); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeProjectService) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	f.created = append(f.created, name)
	f.createID++
	return &model.Project{ID: fmt.Sprintf("prj_new_%d", f.createID), Name: name}, nil
}

type scriptedPrompter struct {
	confirmAnswer bool
	selectAnswer  string
	multiAnswer   []int
	confirmCalls  int
	multiCalls    int
	multiOptions  []SelectOption
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	p.confirmCalls++
	return p.confirmAnswer, nil
}

func (p *scriptedPrompter) Select(message string, options []string, def string) (string, error) {
	if p.selectAnswer != "" {
		return p.selectAnswer, nil
	}
	return def, nil
}

func (p *scriptedPrompter) MultiSelect(message string, options []SelectOption) ([]int, error) {
	p.multiCalls++
	p.multiOptions = options
	return p.multiAnswer, nil
}

func linkFixtureFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/home/u/proj/.git/config", gitConfigFixture)
	writeFile(t, fs, "/home/u/proj/apps/web/package.json",
		`{"name":"web","dependencies":{"next":"14.0.0"}}`)
	return fs
}

func scopedResolver(fs afero.Fs, p Prompter) *Resolver {
	return NewResolver(
		WithFs(fs),
		WithHome("/home/u"),
		WithPrompter(p),
		WithScopeResolver(func(context.Context) (model.Org, error) {
			return model.Org{ID: "team_1", Slug: "acme"}, nil
		}),
	)
}

func TestEnsureRepoLinkFirstTime(t *testing.T) {
	fs := linkFixtureFs(t)
	prompter := &scriptedPrompter{confirmAnswer: true, multiAnswer: []int{0, 1}}
	svc := &fakeProjectService{remote: []model.Project{
		{ID: "prj_api", Name: "api", RootDirectory: "services/api"},
	}}
	r := scopedResolver(fs, prompter)

	link, err := r.EnsureRepoLink(context.Background(), svc, "/home/u/proj/apps/web", EnsureOptions{})
	require.NoError(t, err)
	require.NotNil(t, link.RepoConfig)

	assert.Equal(t, "git@github.com:acme/monorepo.git", svc.lastURL, "existing projects looked up by remote URL")
	assert.Equal(t, []string{"web"}, svc.created, "the detected project was created remotely")

	cfg := link.RepoConfig
	assert.Equal(t, "team_1", cfg.OrgID)
	assert.Equal(t, "origin", cfg.RemoteName)
	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, model.ProjectLink{ID: "prj_api", Name: "api", Directory: "services/api"}, cfg.Projects[0])
	assert.Equal(t, model.ProjectLink{ID: "prj_new_1", Name: "web", Directory: "apps/web"}, cfg.Projects[1])

	// manifest persisted, note written, metadata dir ignored
	data, err := afero.ReadFile(fs, "/home/u/proj/.stratus/repo.json")
	require.NoError(t, err)
	persisted, err := model.UnmarshalManifest(data)
	require.NoError(t, err)
	assert.Equal(t, *cfg, persisted)

	exists, _ := afero.Exists(fs, "/home/u/proj/.stratus/README.txt")
	assert.True(t, exists)
	ignore, err := afero.ReadFile(fs, "/home/u/proj/.gitignore")
	require.NoError(t, err)
	assert.Contains(t, string(ignore), ".stratus")
}

func TestEnsureRepoLinkIdempotent(t *testing.T) {
	fs := linkFixtureFs(t)
	writeFile(t, fs, "/home/u/proj/.stratus/repo.json",
		`{"orgId":"team_1","remoteName":"origin","projects":[{"id":"prj_1","name":"web","directory":"."}]}`)
	prompter := &scriptedPrompter{}
	svc := &fakeProjectService{listErr: fmt.Errorf("network must not be touched")}
	r := scopedResolver(fs, prompter)

	link, err := r.EnsureRepoLink(context.Background(), svc, "/home/u/proj", EnsureOptions{})
	require.NoError(t, err)
	require.NotNil(t, link.RepoConfig)
	assert.Equal(t, "prj_1", link.RepoConfig.Projects[0].ID)
	assert.Zero(t, prompter.confirmCalls, "no prompting on an already linked repository")
	assert.Empty(t, svc.lastURL, "no network calls on an already linked repository")
}

func TestEnsureRepoLinkDeclined(t *testing.T) {
	fs := linkFixtureFs(t)
	prompter := &scriptedPrompter{confirmAnswer: false}
	r := scopedResolver(fs, prompter)

	_, err := r.EnsureRepoLink(context.Background(), &fakeProjectService{}, "/home/u/proj", EnsureOptions{})
	assert.True(t, errors.Is(err, status.ErrNotLinked))

	exists, _ := afero.Exists(fs, "/home/u/proj/.stratus/repo.json")
	assert.False(t, exists, "no manifest written on cancel")
}

func TestEnsureRepoLinkEmptySelection(t *testing.T) {
	fs := linkFixtureFs(t)
	prompter := &scriptedPrompter{confirmAnswer: true, multiAnswer: []int{}}
	r := scopedResolver(fs, prompter)

	_, err := r.EnsureRepoLink(context.Background(), &fakeProjectService{}, "/home/u/proj", EnsureOptions{})
	assert.True(t, errors.Is(err, status.ErrNotLinked))
}

func TestEnsureRepoLinkDedupsDetectedAgainstExisting(t *testing.T) {
	fs := linkFixtureFs(t)
	prompter := &scriptedPrompter{confirmAnswer: true, multiAnswer: []int{0}}
	// the remote project already owns apps/web, so detection must not offer it again
	svc := &fakeProjectService{remote: []model.Project{
		{ID: "prj_web", Name: "web", RootDirectory: "apps/web"},
	}}
	r := scopedResolver(fs, prompter)

	link, err := r.EnsureRepoLink(context.Background(), svc, "/home/u/proj", EnsureOptions{})
	require.NoError(t, err)
	require.Len(t, prompter.multiOptions, 1, "duplicate candidate was dropped")
	assert.True(t, prompter.multiOptions[0].Checked, "existing projects are pre-checked")
	assert.Empty(t, svc.created)
	require.Len(t, link.RepoConfig.Projects, 1)
	assert.Equal(t, "prj_web", link.RepoConfig.Projects[0].ID)
}

func TestEnsureRepoLinkOverwrite(t *testing.T) {
	fs := linkFixtureFs(t)
	writeFile(t, fs, "/home/u/proj/.stratus/repo.json",
		`{"orgId":"team_old","remoteName":"origin","projects":[{"id":"prj_old","name":"old","directory":"."}]}`)
	prompter := &scriptedPrompter{confirmAnswer: true, multiAnswer: []int{0}}
	svc := &fakeProjectService{}
	r := scopedResolver(fs, prompter)

	fresh, err := r.EnsureRepoLink(context.Background(), svc, "/home/u/proj", EnsureOptions{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, "team_1", fresh.RepoConfig.OrgID, "overwrite relinks from scratch")
	assert.Equal(t, []string{"web"}, svc.created)
}

func TestEnsureRepoLinkNoRepoRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := scopedResolver(fs, &scriptedPrompter{})

	_, err := r.EnsureRepoLink(context.Background(), &fakeProjectService{}, "/nowhere", EnsureOptions{})
	assert.True(t, errors.Is(err, status.ErrNoRepoRoot))
}

func TestEnsureRepoLinkWithoutLocalCandidates(t *testing.T) {
	// a tree with nothing detectable still links its remote projects
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/home/u/proj/.git/config", gitConfigFixture)
	prompter := &scriptedPrompter{confirmAnswer: true, multiAnswer: []int{0}}
	svc := &fakeProjectService{remote: []model.Project{
		{ID: "prj_api", Name: "api", RootDirectory: "."},
	}}
	r := scopedResolver(fs, prompter)

	link, err := r.EnsureRepoLink(context.Background(), svc, "/home/u/proj", EnsureOptions{})
	require.NoError(t, err)
	require.Len(t, link.RepoConfig.Projects, 1)
	assert.Equal(t, "prj_api", link.RepoConfig.Projects[0].ID)
}
