package model

import (
	"fmt"
	"time"
	"unicode"
)

// Project describes a remote project living under an organization scope.
type Project struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	AccountID     string    `json:"accountId,omitempty" yaml:"accountId,omitempty"`
	Framework     string    `json:"framework,omitempty" yaml:"framework,omitempty"`
	RootDirectory string    `json:"rootDirectory,omitempty" yaml:"rootDirectory,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Projects is a sortable collection of projects
type Projects []Project

func (p Projects) Len() int {
	return len(p)
}
func (p Projects) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}
func (p Projects) Less(i, j int) bool {
	return p[i].Name < p[j].Name
}

// Org is the organization or team scope a project belongs to.
type Org struct {
	ID   string `json:"id" yaml:"id"`
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ValidateProjectName verifies a candidate project name before a remote create call.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("empty field: project name is empty")
	}
	for i, c := range name {
		if !unicode.IsDigit(c) && !unicode.IsLower(c) && !unicode.Is(unicode.Hyphen, c) && c != '.' && c != '_' {
			return fmt.Errorf("invalid name: project name %s contains unsupported character %q",
				name, string([]rune(name)[i]))
		}
	}
	return nil
}
