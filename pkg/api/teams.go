package api

import (
	"context"
	"net/http"

	"github.com/stratus-cloud/stratus/pkg/model"
)

// User is the authenticated principal behind the client's token.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// GetUser resolves the authenticated user.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var envelope struct {
		User User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/user", nil, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.User, nil
}

// GetTeams lists the teams the authenticated user belongs to: candidate
// organization scopes during linking.
func (c *Client) GetTeams(ctx context.Context) ([]model.Org, error) {
	var envelope struct {
		Teams []model.Org `json:"teams"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/teams", nil, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Teams, nil
}
