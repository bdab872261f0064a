package api

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/events"
)

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, events.Event) error {
	p.calls++
	return errors.New("broker down")
}

func TestEventDispatcher_DrainsOnStop(t *testing.T) {
	recorder := &events.Recorder{}
	d := NewEventDispatcher(recorder, zerolog.Nop())
	d.Start()

	for _, id := range []string{"a", "b", "c"} {
		require.True(t, d.Enqueue(events.Event{Type: events.ProjectionCompleted, RunID: id}))
	}
	d.Stop()

	got := recorder.Events()
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[2].RunID)

	assert.False(t, d.Enqueue(events.Event{RunID: "late"}))
	d.Stop()
}

func TestEventDispatcher_DropsWhenFull(t *testing.T) {
	d := NewEventDispatcher(&events.Recorder{}, zerolog.Nop())
	d.queue = make(chan events.Event, 1)

	// Not started: nothing drains the queue.
	assert.True(t, d.Enqueue(events.Event{RunID: "a"}))
	assert.False(t, d.Enqueue(events.Event{RunID: "b"}))
}

func TestEventDispatcher_PublishErrorsAreSwallowed(t *testing.T) {
	p := &failingPublisher{}
	d := NewEventDispatcher(p, zerolog.Nop())
	d.Start()
	d.Enqueue(events.Event{RunID: "a"})
	d.Stop()
	assert.Equal(t, 1, p.calls)
}
