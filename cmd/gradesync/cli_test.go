package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/younsl/gradesync/pkg/publishing"
)

func TestLinePresenterUpdate(t *testing.T) {
	var out, errOut bytes.Buffer
	lp := newLinePresenter(&out, &errOut)

	lp.Update(publishing.Present(publishing.StatusPublished, publishing.StatusReport{
		"Grade could not be synced": 2,
		"Synced":                    30,
	}, false))

	text := out.String()
	assert.Contains(t, text, "status: published")
	assert.Contains(t, text, "action: Resync grades to SIS (enabled)")
	assert.Contains(t, text, "    2  Grade could not be synced")
	assert.Contains(t, text, "   30  Synced")
	assert.Empty(t, errOut.String())

	select {
	case p := <-lp.updates:
		assert.Equal(t, publishing.StatusPublished, p.Status)
	default:
		t.Fatal("expected presentation on updates channel")
	}
}

func TestLinePresenterDisabledAndError(t *testing.T) {
	var out bytes.Buffer
	lp := newLinePresenter(&out, &out)

	lp.Update(publishing.Present(publishing.StatusPending, nil, false))
	lp.Update(publishing.Present(publishing.StatusError, nil, false))

	text := out.String()
	assert.Contains(t, text, "action: Syncing grades to SIS... (disabled)")
	assert.Contains(t, text, "last sync did not complete")
}

func TestLinePresenterFlash(t *testing.T) {
	var out, errOut bytes.Buffer
	lp := newLinePresenter(&out, &errOut)

	lp.Flash(publishing.FlashPublishFailed)

	assert.Equal(t, []string{publishing.FlashPublishFailed}, lp.Flashes())
	assert.Contains(t, errOut.String(), "Error: "+publishing.FlashPublishFailed)
	assert.Empty(t, out.String())
}

func TestLinePresenterDoesNotBlockWhenFull(t *testing.T) {
	var out bytes.Buffer
	lp := newLinePresenter(&out, &out)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 64; i++ {
			lp.Update(publishing.Present(publishing.StatusPending, nil, false))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Update blocked on a full channel")
	}
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "yes", input: "y\n", expected: true},
		{name: "full yes", input: "YES\n", expected: true},
		{name: "no", input: "n\n", expected: false},
		{name: "empty line", input: "\n", expected: false},
		{name: "eof", input: "", expected: false},
		{name: "yes without newline", input: "y", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			pc := newPromptConfirmer(strings.NewReader(tt.input), &out, false)

			got := pc.Confirm(publishing.ConfirmSyncMessage)

			assert.Equal(t, tt.expected, got)
			assert.True(t, pc.asked)
			assert.Equal(t, tt.expected, pc.yes)
			assert.True(t, strings.HasPrefix(out.String(), publishing.ConfirmSyncMessage+" [y/N]: "))
		})
	}
}

func TestPromptConfirmerAssumeYes(t *testing.T) {
	var out bytes.Buffer
	pc := newPromptConfirmer(strings.NewReader(""), &out, true)

	require.True(t, pc.Confirm(publishing.ConfirmResyncMessage))
	assert.Contains(t, out.String(), publishing.ConfirmResyncMessage+" [y/N]: yes")
}

// scriptedTransport replays checks in order. Once they run out it returns
// exhausted, or published when exhausted is nil.
type scriptedTransport struct {
	mu        sync.Mutex
	checks    []*publishing.Response
	exhausted error
	publish   *publishing.Response
}

func (s *scriptedTransport) CheckStatus(ctx context.Context) (*publishing.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.checks) == 0 {
		if s.exhausted != nil {
			return nil, s.exhausted
		}
		return &publishing.Response{OverallStatus: "published", HasStatus: true}, nil
	}
	resp := s.checks[0]
	s.checks = s.checks[1:]
	return resp, nil
}

func (s *scriptedTransport) Publish(ctx context.Context) (*publishing.Response, error) {
	return s.publish, nil
}

func TestWaitForSyncReturnsTerminalStatus(t *testing.T) {
	transport := &scriptedTransport{
		checks: []*publishing.Response{
			{OverallStatus: "unpublished", HasStatus: true},
			{OverallStatus: "publishing", HasStatus: true},
			{OverallStatus: "published", HasStatus: true, Statuses: publishing.StatusReport{"Synced": 3}},
		},
		publish: &publishing.Response{OverallStatus: "pending", HasStatus: true},
	}

	var out bytes.Buffer
	presenter := newLinePresenter(&out, &out)
	poller := publishing.New(transport, presenter, publishing.WithInterval(10*time.Millisecond))
	defer poller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poller.TriggerCheck(ctx)
	poller.Publish(ctx, publishing.AlwaysConfirm)

	status, err := waitForSync(ctx, poller, presenter.updates, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, publishing.StatusPublished, status)
	assert.Contains(t, out.String(), "Synced")
}

func TestWaitForSyncHonorsContext(t *testing.T) {
	transport := &scriptedTransport{
		checks: []*publishing.Response{
			{OverallStatus: "pending", HasStatus: true},
		},
	}

	var out bytes.Buffer
	presenter := newLinePresenter(&out, &out)
	poller := publishing.New(transport, presenter, publishing.WithInterval(time.Hour))
	defer poller.Stop()

	poller.TriggerCheck(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := waitForSync(ctx, poller, make(chan publishing.Presentation), time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, publishing.StatusPending, status)
}

func TestWaitForSyncStopsWhenFollowUpCheckEnds(t *testing.T) {
	tests := []struct {
		name      string
		checks    []*publishing.Response
		exhausted error
	}{
		{
			name:      "follow-up check fails",
			checks:    []*publishing.Response{{OverallStatus: "unpublished", HasStatus: true}},
			exhausted: errors.New("connection reset"),
		},
		{
			name: "follow-up check has no status",
			checks: []*publishing.Response{
				{OverallStatus: "unpublished", HasStatus: true},
				{HasStatus: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &scriptedTransport{
				checks:    tt.checks,
				exhausted: tt.exhausted,
				publish:   &publishing.Response{OverallStatus: "pending", HasStatus: true},
			}

			var out bytes.Buffer
			presenter := newLinePresenter(&out, &out)
			poller := publishing.New(transport, presenter, publishing.WithInterval(10*time.Millisecond))
			defer poller.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			poller.TriggerCheck(ctx)
			poller.Publish(ctx, publishing.AlwaysConfirm)

			start := time.Now()
			status, err := waitForSync(ctx, poller, presenter.updates, 10*time.Millisecond)
			require.ErrorIs(t, err, errPollingStopped)
			assert.NotErrorIs(t, err, context.DeadlineExceeded)
			assert.Equal(t, publishing.StatusPending, status)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}
