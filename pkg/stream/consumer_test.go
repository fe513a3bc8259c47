package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stratus-cloud/stratus/pkg/errors"
	"github.com/stratus-cloud/stratus/pkg/model"
	"github.com/stratus-cloud/stratus/pkg/stream/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedResponse struct {
	status int
	body   string
	pipe   *io.PipeReader // response body that stays open until closed
}

// fakeFeed scripts one response per connection attempt, repeating the last
// one when the consumer outlives the script.
type fakeFeed struct {
	mu        sync.Mutex
	responses []scriptedResponse
	calls     int

	stateErr   error
	readyAfter int // polls needed before READY is reported
	statePolls int
}

func (f *fakeFeed) DeploymentEvents(ctx context.Context, idOrURL string, follow bool) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	r := f.responses[i]
	var body io.ReadCloser
	if r.pipe != nil {
		body = r.pipe
	} else {
		body = io.NopCloser(strings.NewReader(r.body))
	}
	return &http.Response{StatusCode: r.status, Body: body}, nil
}

func (f *fakeFeed) DeploymentState(ctx context.Context, idOrURL string) (model.ReadyState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statePolls++
	if f.stateErr != nil {
		return "", f.stateErr
	}
	if f.readyAfter > 0 && f.statePolls >= f.readyAfter {
		return model.StateReady, nil
	}
	return model.StateBuilding, nil
}

func (f *fakeFeed) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingEraser struct {
	mu    sync.Mutex
	calls []int
}

func (e *recordingEraser) EraseLines(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, n)
}

func (e *recordingEraser) counts() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.calls...)
}

func eventLine(text string) string {
	return fmt.Sprintf(`{"type":"stdout","payload":{"text":%q}}`, text)
}

func feedBody(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// collectSink records forwarded events and reports one output line each.
func collectSink() (*[]string, OnEventFunc) {
	var mu sync.Mutex
	texts := &[]string{}
	return texts, func(e model.DeployEvent) int {
		mu.Lock()
		defer mu.Unlock()
		*texts = append(*texts, e.Text())
		return 1
	}
}

func TestConsumeForwardsInOrder(t *testing.T) {
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusOK, body: feedBody(eventLine("a"), eventLine("b"), eventLine("c"))},
	}}
	texts, sink := collectSink()

	err := Consume(context.Background(), feed, "dpl_1", WithOnEvent(sink))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, *texts)
	assert.Equal(t, 1, feed.attempts())
}

func TestConsumeHonorsLimit(t *testing.T) {
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusOK, body: feedBody(
			eventLine("1"), eventLine("2"), eventLine("3"), eventLine("4"), eventLine("5"),
		)},
	}}
	texts, sink := collectSink()

	err := Consume(context.Background(), feed, "dpl_1", WithOnEvent(sink), WithLimit(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, *texts)
}

func TestConsumeDeployModeBuildComplete(t *testing.T) {
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusOK, body: feedBody(
			eventLine("building"),
			eventLine("built"),
			`{"type":"build-complete"}`,
			eventLine("after the end"),
		)},
	}}
	texts, sink := collectSink()

	var opened int32
	err := Consume(context.Background(), feed, "dpl_1",
		WithMode(ModeDeploy),
		WithOnEvent(sink),
		WithOnFirstOpen(func() { opened++ }),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"building", "built"}, *texts)
	assert.EqualValues(t, 1, opened, "onFirstOpen fires exactly once")
}

func TestConsumeBuildCompleteForwardedOutsideDeployMode(t *testing.T) {
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusOK, body: feedBody(`{"type":"build-complete"}`, eventLine("tail"))},
	}}

	var kinds []string
	err := Consume(context.Background(), feed, "dpl_1", WithOnEvent(func(e model.DeployEvent) int {
		kinds = append(kinds, e.Type)
		return 0
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"build-complete", "stdout"}, kinds)
}

func TestConsumeRetriesServerErrors(t *testing.T) {
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusServiceUnavailable},
		{status: http.StatusServiceUnavailable},
		{status: http.StatusServiceUnavailable},
		{status: http.StatusOK, body: feedBody(eventLine("made it"))},
	}}
	texts, sink := collectSink()
	eraser := &recordingEraser{}

	err := Consume(context.Background(), feed, "dpl_1", WithOnEvent(sink), WithEraser(eraser))
	require.NoError(t, err)
	assert.Equal(t, []string{"made it"}, *texts)
	assert.Equal(t, 4, feed.attempts())
	// one erase per retry; nothing was emitted yet so only the
	// in-progress line is cleared each time
	assert.Equal(t, []int{1, 1, 1}, eraser.counts())
}

func TestConsumeEraseAccountsForEmittedLines(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		_, _ = io.WriteString(pw, feedBody(eventLine("one"), eventLine("two")))
		// fail the connection mid-stream
		_ = pw.CloseWithError(fmt.Errorf("connection reset"))
	}()
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusOK, pipe: pr},
		{status: http.StatusOK, body: feedBody(eventLine("one"), eventLine("two"), eventLine("three"))},
	}}
	texts, sink := collectSink()
	eraser := &recordingEraser{}

	err := Consume(context.Background(), feed, "dpl_1", WithOnEvent(sink), WithEraser(eraser))
	require.NoError(t, err)
	// two stale lines plus the in-progress one were erased before the replay
	assert.Equal(t, []int{3}, eraser.counts())
	assert.Equal(t, []string{"one", "two", "one", "two", "three"}, *texts)
}

func TestConsumeBailsOnClientError(t *testing.T) {
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusNotFound},
	}}
	eraser := &recordingEraser{}

	var opened int32
	err := Consume(context.Background(), feed, "dpl_1",
		WithEraser(eraser),
		WithOnFirstOpen(func() { opened++ }),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrFeedRejected))
	assert.Equal(t, 1, feed.attempts(), "no retry on 4xx")
	assert.Empty(t, eraser.counts(), "no erasure on immediate abort")
	assert.EqualValues(t, 1, opened)
}

func TestConsumeExhaustsRetryBudget(t *testing.T) {
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusInternalServerError},
	}}

	err := Consume(context.Background(), feed, "dpl_1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrFeedUnavailable))
	assert.Equal(t, 1+maxStreamRetries, feed.attempts())
}

func TestConsumeDeployModePollCompletes(t *testing.T) {
	pr, _ := io.Pipe() // feed stays open, the poll must complete the call
	feed := &fakeFeed{
		responses:  []scriptedResponse{{status: http.StatusOK, pipe: pr}},
		readyAfter: 2,
	}

	done := make(chan error, 1)
	go func() {
		done <- Consume(context.Background(), feed, "dpl_1",
			WithMode(ModeDeploy),
			WithPollInterval(5*time.Millisecond),
		)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("poll completion never fired")
	}
}

func TestConsumeDeployModePollErrorIsTerminal(t *testing.T) {
	pr, _ := io.Pipe()
	pollErr := fmt.Errorf("status endpoint down")
	feed := &fakeFeed{
		responses: []scriptedResponse{{status: http.StatusOK, pipe: pr}},
		stateErr:  pollErr,
	}

	done := make(chan error, 1)
	go func() {
		done <- Consume(context.Background(), feed, "dpl_1",
			WithMode(ModeDeploy),
			WithPollInterval(5*time.Millisecond),
		)
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, pollErr)
		assert.Equal(t, 1, feed.attempts(), "poll failures are not retried")
	case <-time.After(5 * time.Second):
		t.Fatal("poll error never surfaced")
	}
}

func TestConsumeDecodeErrorIsRetried(t *testing.T) {
	feed := &fakeFeed{responses: []scriptedResponse{
		{status: http.StatusOK, body: "this is not json\n"},
		{status: http.StatusOK, body: feedBody(eventLine("clean"))},
	}}
	texts, sink := collectSink()

	err := Consume(context.Background(), feed, "dpl_1", WithOnEvent(sink))
	require.NoError(t, err)
	assert.Equal(t, []string{"clean"}, *texts)
	assert.Equal(t, 2, feed.attempts())
}
