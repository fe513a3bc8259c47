package stream

import (
	"io"
	"time"

	"github.com/stratus-cloud/stratus/pkg/model"
	"go.uber.org/zap"
)

// Mode selects the completion semantics of a consumer.
type Mode string

const (
	// ModeLogs follows the feed until the server closes it
	ModeLogs Mode = "logs"

	// ModeDeploy additionally polls the deployment state and treats
	// build-complete as successful completion
	ModeDeploy Mode = "deploy"
)

// OnEventFunc is the caller-supplied sink for decoded events. It returns the
// number of output lines it produced, which feeds the erase bookkeeping on
// retries.
type OnEventFunc func(model.DeployEvent) int

// Option is a functor to define consumer settings
type Option func(*Consumer)

// WithMode sets the completion semantics (default ModeLogs)
func WithMode(m Mode) Option {
	return func(c *Consumer) {
		c.mode = m
	}
}

// WithOnEvent sets the event sink. The default renders log lines on the
// consumer's output writer.
func WithOnEvent(fn OnEventFunc) Option {
	return func(c *Consumer) {
		if fn != nil {
			c.onEvent = fn
		}
	}
}

// WithOnFirstOpen registers a callback fired exactly once, the first time the
// stream is known to be open (connected, or failed for good).
func WithOnFirstOpen(fn func()) Option {
	return func(c *Consumer) {
		if fn != nil {
			c.onFirstOpen = fn
		}
	}
}

// WithLimit caps the number of events forwarded to the sink (0 means unbounded)
func WithLimit(limit int) Option {
	return func(c *Consumer) {
		c.limit = limit
	}
}

// WithFollow keeps the feed open for new events instead of returning the
// backlog only
func WithFollow(follow bool) Option {
	return func(c *Consumer) {
		c.follow = follow
	}
}

// WithOutput sets the writer receiving rendered events and erase sequences
func WithOutput(w io.Writer) Option {
	return func(c *Consumer) {
		if w != nil {
			c.out = w
			c.eraser = NewEraser(w)
		}
	}
}

// WithEraser overrides the terminal eraser (used by tests)
func WithEraser(e Eraser) Option {
	return func(c *Consumer) {
		if e != nil {
			c.eraser = e
		}
	}
}

// WithLogger injects a logger on this consumer
func WithLogger(l *zap.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.l = l
		}
	}
}

// WithPollInterval overrides the deploy-mode status poll cadence (used by tests)
func WithPollInterval(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithRetries overrides the retry budget (used by tests)
func WithRetries(n int) Option {
	return func(c *Consumer) {
		if n >= 0 {
			c.retries = n
		}
	}
}
