package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_PublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	failure := errors.New("handler failed")

	d.Subscribe(EventStepFailed, func(context.Context, Event) error {
		calls = append(calls, "first")
		return failure
	})
	d.Subscribe(EventStepFailed, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventStepCompleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventStepFailed})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, []string{"first", "second"}, calls)
}
