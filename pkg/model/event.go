package model

import (
	"encoding/json"
)

// EventBuildComplete is the discriminator closing a build log feed.
const EventBuildComplete = "build-complete"

// DeployEvent is one record from the newline-delimited deployment event feed.
//
// Only the discriminator is interpreted by the consumer: the payload is
// forwarded opaque, in arrival order.
type DeployEvent struct {
	Type    string          `json:"type"`
	Created int64           `json:"created,omitempty"` // unix milliseconds
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Text extracts the human-readable line of a log event, when there is one.
func (e DeployEvent) Text() string {
	if len(e.Payload) == 0 {
		return ""
	}
	var body struct {
		Text string `json:"text"`
		Info struct {
			Name string `json:"name"`
		} `json:"info"`
	}
	if err := json.Unmarshal(e.Payload, &body); err != nil {
		return ""
	}
	return body.Text
}
