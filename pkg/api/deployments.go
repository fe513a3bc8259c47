package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/stratus-cloud/stratus/pkg/model"
)

const deploymentsPerPage = 100

// GetDeployment fetches the current descriptor of one deployment.
func (c *Client) GetDeployment(ctx context.Context, idOrURL string) (*model.Deployment, error) {
	var d model.Deployment
	if err := c.doJSON(ctx, http.MethodGet, "/v13/deployments/"+url.PathEscape(idOrURL), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeploymentState polls the ready state of a deployment. This is the
// secondary completion signal used by the event stream consumer.
func (c *Client) DeploymentState(ctx context.Context, idOrURL string) (model.ReadyState, error) {
	d, err := c.GetDeployment(ctx, idOrURL)
	if err != nil {
		return "", err
	}
	return d.ReadyState, nil
}

// DeploymentEvents opens the chunked event feed of a deployment and returns
// the raw response: status classification and line decoding belong to the
// stream consumer.
func (c *Client) DeploymentEvents(ctx context.Context, idOrURL string, follow bool) (*http.Response, error) {
	values := url.Values{}
	values.Set("direction", "forward")
	if follow {
		values.Set("follow", "1")
	}
	req, err := c.NewRequest(ctx, http.MethodGet, "/v3/deployments/"+url.PathEscape(idOrURL)+"/events", values, nil)
	if err != nil {
		return nil, err
	}
	return c.Fetch(req)
}

// deploymentsPage is one chunk of the paginated deployment listing.
type deploymentsPage struct {
	Deployments []model.Deployment `json:"deployments"`
	Pagination  struct {
		Next *int64 `json:"next"`
	} `json:"pagination"`
}

// ApplyDeploymentFunc is a function to be applied on a deployment
type ApplyDeploymentFunc func(model.Deployment) error

// ListDeploymentsApply applies some function to the retrieved deployments of
// a project, following the pagination cursor until the last page or the
// first error.
func (c *Client) ListDeploymentsApply(ctx context.Context, projectID string, apply ApplyDeploymentFunc) error {
	var next *int64
	for {
		values := url.Values{}
		values.Set("limit", strconv.Itoa(deploymentsPerPage))
		if projectID != "" {
			values.Set("projectId", projectID)
		}
		if next != nil {
			values.Set("until", strconv.FormatInt(*next, 10))
		}

		var page deploymentsPage
		if err := c.doJSON(ctx, http.MethodGet, "/v6/deployments", values, nil, &page); err != nil {
			return err
		}
		for _, d := range page.Deployments {
			if err := apply(d); err != nil {
				return err
			}
		}
		if page.Pagination.Next == nil {
			return nil
		}
		next = page.Pagination.Next
	}
}
