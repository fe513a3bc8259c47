package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/stratus-cloud/stratus/pkg/model"
)

const projectsPerPage = 100

// ProjectsQuery narrows a project listing.
type ProjectsQuery struct {
	// RepoURL restricts the listing to projects linked to a git remote URL
	RepoURL string
}

// projectsPage is one chunk of the paginated listing endpoint.
type projectsPage struct {
	Projects   []model.Project `json:"projects"`
	Pagination struct {
		Next *int64 `json:"next"`
	} `json:"pagination"`
}

// ApplyProjectFunc is a function to be applied on a project
type ApplyProjectFunc func(model.Project) error

// ListProjectsApply applies some function to the retrieved projects, in the
// order pages arrive from the platform. Iteration follows the pagination
// cursor until the last page or the first error.
func (c *Client) ListProjectsApply(ctx context.Context, q ProjectsQuery, apply ApplyProjectFunc) error {
	var next *int64
	for {
		values := url.Values{}
		values.Set("limit", strconv.Itoa(projectsPerPage))
		if q.RepoURL != "" {
			values.Set("repoUrl", q.RepoURL)
		}
		if next != nil {
			values.Set("until", strconv.FormatInt(*next, 10))
		}

		var page projectsPage
		if err := c.doJSON(ctx, http.MethodGet, "/v8/projects", values, nil, &page); err != nil {
			return err
		}
		for _, project := range page.Projects {
			if err := apply(project); err != nil {
				return err
			}
		}
		if page.Pagination.Next == nil {
			return nil
		}
		next = page.Pagination.Next
	}
}

// ListProjects collects all projects matching the query until completion.
func (c *Client) ListProjects(ctx context.Context, q ProjectsQuery) (model.Projects, error) {
	projects := make(model.Projects, 0, projectsPerPage)
	err := c.ListProjectsApply(ctx, q, func(p model.Project) error {
		projects = append(projects, p)
		return nil
	})
	return projects, err
}

// CreateProject creates a remote project under the client's scope.
func (c *Client) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	if err := model.ValidateProjectName(name); err != nil {
		return nil, err
	}
	in := struct {
		Name string `json:"name"`
	}{Name: name}

	var project model.Project
	if err := c.doJSON(ctx, http.MethodPost, "/v9/projects", nil, in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
