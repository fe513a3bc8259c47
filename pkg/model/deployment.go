package model

import (
	"time"
)

// ReadyState is the lifecycle state reported for a deployment.
type ReadyState string

const (
	// StateQueued means the deployment is waiting for a build slot
	StateQueued ReadyState = "QUEUED"

	// StateBuilding means the build is in progress
	StateBuilding ReadyState = "BUILDING"

	// StateReady means the deployment completed and serves traffic
	StateReady ReadyState = "READY"

	// StateError means the build or deploy failed
	StateError ReadyState = "ERROR"

	// StateCanceled means the deployment was canceled before completion
	StateCanceled ReadyState = "CANCELED"
)

// Terminal tells whether no further state transition may occur.
func (s ReadyState) Terminal() bool {
	switch s {
	case StateReady, StateError, StateCanceled:
		return true
	}
	return false
}

// Deployment describes one deployment of a project.
type Deployment struct {
	UID        string     `json:"uid" yaml:"uid"`
	Name       string     `json:"name" yaml:"name"`
	URL        string     `json:"url,omitempty" yaml:"url,omitempty"`
	ReadyState ReadyState `json:"readyState" yaml:"readyState"`
	CreatedAt  time.Time  `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Deployments is a sortable collection of deployments, most recent first
type Deployments []Deployment

func (d Deployments) Len() int {
	return len(d)
}
func (d Deployments) Swap(i, j int) {
	d[i], d[j] = d[j], d[i]
}
func (d Deployments) Less(i, j int) bool {
	return d[i].CreatedAt.After(d[j].CreatedAt)
}
