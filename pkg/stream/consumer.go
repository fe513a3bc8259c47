// Package stream consumes the chunked, newline-delimited event feed of a
// deployment: events are forwarded in arrival order, transient failures are
// retried with the stale partial output erased first, and several racing
// completion signals (stream end, event limit, build completion, status
// poll) funnel through one idempotent finish gate.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/stratus-cloud/stratus/pkg/errors"
	"github.com/stratus-cloud/stratus/pkg/model"
	"github.com/stratus-cloud/stratus/pkg/stream/status"
	"go.uber.org/zap"
)

const (
	// maxStreamRetries is the number of reconnection attempts after the
	// initial one.
	maxStreamRetries = 4

	defaultPollInterval = 5 * time.Second

	maxLineBytes = 1 << 20
)

// Feed abstracts the platform endpoints the consumer needs: the raw event
// feed and the deployment state used as a secondary completion signal.
// *api.Client satisfies it.
type Feed interface {
	DeploymentEvents(ctx context.Context, idOrURL string, follow bool) (*http.Response, error)
	DeploymentState(ctx context.Context, idOrURL string) (model.ReadyState, error)
}

// Consumer drives one invocation of the event feed for one deployment.
type Consumer struct {
	feed        Feed
	locator     string
	mode        Mode
	onEvent     OnEventFunc
	onFirstOpen func()
	limit       int
	follow      bool
	out         io.Writer
	eraser      Eraser
	l           *zap.Logger

	pollInterval time.Duration
	retries      int

	firstOpen sync.Once
	emitted   int // output units since the last retry boundary
	forwarded int // events forwarded to the sink, across retries
}

func newConsumer(feed Feed, locator string, opts []Option) *Consumer {
	c := &Consumer{
		feed:         feed,
		locator:      locator,
		mode:         ModeLogs,
		onFirstOpen:  func() {},
		out:          os.Stdout,
		l:            zap.NewNop(),
		pollInterval: defaultPollInterval,
		retries:      maxStreamRetries,
	}
	c.onEvent = c.renderEvent
	c.eraser = NewEraser(c.out)
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// Consume opens the event feed of a deployment and processes it to
// completion. Transient failures (5xx, connection or decode errors) are
// retried up to the budget, erasing the partial output of the failed attempt
// first; a 4xx answer aborts immediately. The last error propagates once the
// budget is spent.
func Consume(ctx context.Context, feed Feed, locator string, opts ...Option) error {
	c := newConsumer(feed, locator, opts)
	return c.run(ctx)
}

func (c *Consumer) run(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			// the +1 accounts for the in-progress line of the failed attempt
			c.eraser.EraseLines(c.emitted + 1)
			c.emitted = 0
		}
		err := c.attempt(ctx)
		if err == nil {
			return nil
		}
		var bail *bailError
		if errors.As(err, &bail) {
			return bail.err
		}
		lastErr = err
		if ctx.Err() != nil {
			// caller interrupted, do not spend the budget on a dead context
			return lastErr
		}
		c.l.Debug("event feed attempt failed",
			zap.String("deployment", c.locator),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	c.l.Debug("event feed retries exhausted", zap.String("deployment", c.locator))
	return lastErr
}

// bailError marks a terminal failure that must short-circuit the retry loop.
type bailError struct {
	err error
}

func (b *bailError) Error() string {
	return b.err.Error()
}

func (b *bailError) Unwrap() error {
	return b.err
}

// gate is the idempotent finish gate: of all racing completion signals, only
// the first has effect.
type gate struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newGate() *gate {
	return &gate{done: make(chan struct{})}
}

func (g *gate) finish(err error) {
	g.once.Do(func() {
		g.err = err
		close(g.done)
	})
}

func (c *Consumer) markOpen() {
	c.firstOpen.Do(c.onFirstOpen)
}

// attempt performs one connection to the feed and processes it until a
// completion signal fires.
func (c *Consumer) attempt(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	resp, err := c.feed.DeploymentEvents(ctx, c.locator, c.follow)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxLineBytes))
		if resp.StatusCode >= http.StatusInternalServerError {
			return status.ErrFeedUnavailable.WrapMessage("status %d", resp.StatusCode)
		}
		c.markOpen()
		return &bailError{err: status.ErrFeedRejected.WrapMessage("status %d", resp.StatusCode)}
	}
	c.markOpen()

	g := newGate()
	var wg sync.WaitGroup

	if c.mode == ModeDeploy {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.poll(ctx, g)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.decode(resp.Body, g)
	}()

	select {
	case <-g.done:
	case <-ctx.Done():
		g.finish(ctx.Err())
	}

	// unblock the decoder and stop the poll timer, then wait so that no
	// goroutine still touches the bookkeeping when the retry wrapper does
	cancel()
	_ = resp.Body.Close()
	wg.Wait()

	return g.err
}

// decode processes newline-delimited JSON records in arrival order until the
// body ends, a record fails to parse, or a completion signal fires.
func (c *Consumer) decode(body io.Reader, g *gate) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var event model.DeployEvent
		if err := json.Unmarshal(line, &event); err != nil {
			g.finish(fmt.Errorf("decoding event record: %w", err))
			return
		}
		if event.Type == model.EventBuildComplete && c.mode == ModeDeploy {
			g.finish(nil)
			return
		}
		c.emitted += c.onEvent(event)
		c.forwarded++
		if c.limit > 0 && c.forwarded >= c.limit {
			g.finish(nil)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		g.finish(err)
		return
	}
	// server closed the feed
	g.finish(nil)
}

// poll is the deploy-mode side channel: a ready deployment completes the
// stream, a poll failure fails the whole operation with no retry.
func (c *Consumer) poll(ctx context.Context, g *gate) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state, err := c.feed.DeploymentState(ctx, c.locator)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				g.finish(&bailError{err: err})
				return
			}
			if state == model.StateReady {
				g.finish(nil)
				return
			}
		}
	}
}

// renderEvent is the default sink: timestamped log lines on the consumer's
// output writer. Returns the number of lines written.
func (c *Consumer) renderEvent(event model.DeployEvent) int {
	text := event.Text()
	if text == "" {
		return 0
	}
	stamp := ""
	if event.Created > 0 {
		stamp = color.New(color.FgHiBlack).Sprint(time.UnixMilli(event.Created).Format("15:04:05.000")) + "  "
	}
	lines := 0
	for _, l := range bytes.Split([]byte(text), []byte("\n")) {
		fmt.Fprintf(c.out, "%s%s\n", stamp, l)
		lines++
	}
	return lines
}
