package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "creditline/pkg/platform/audit"
)

type flakyAppender struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *flakyAppender) Append(_ context.Context, e audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.Action == "fail" {
		return errors.New("sink rejected event")
	}
	f.events = append(f.events, e)
	return nil
}

func TestWorkerDrainsUntilInboxCloses(t *testing.T) {
	sink := &flakyAppender{}
	inbox := make(chan audit.Event, 3)
	inbox <- audit.Event{Action: "a"}
	inbox <- audit.Event{Action: "fail"}
	inbox <- audit.Event{Action: "b"}
	close(inbox)

	w := NewWorker(sink, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, w.Run(context.Background()))

	require.Len(t, sink.events, 2, "a failed append does not stop the worker")
	assert.Equal(t, "b", sink.events[1].Action)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWorker(&flakyAppender{}, make(chan audit.Event), nil)
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
}
