package ebus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ping struct{ N int }
type pong struct{ N int }

func TestEmitDispatchesByType(t *testing.T) {
	bus := New()
	ctx := context.Background()

	var pings, pongs []int
	bus.
		Subscribe(ping{}, Typed(func(ctx context.Context, ev ping) error {
			pings = append(pings, ev.N)
			return nil
		})).
		Subscribe(pong{}, Typed(func(ctx context.Context, ev pong) error {
			pongs = append(pongs, ev.N)
			return nil
		}))

	assert.NoError(t, bus.Emit(ctx, ping{N: 1}))
	assert.NoError(t, bus.Emit(ctx, ping{N: 2}))
	assert.NoError(t, bus.Emit(ctx, pong{N: 3}))

	assert.Equal(t, []int{1, 2}, pings)
	assert.Equal(t, []int{3}, pongs)
}

func TestEmitWithoutListenersIsNoop(t *testing.T) {
	bus := New()
	assert.NoError(t, bus.Emit(context.Background(), ping{N: 1}))
}

func TestEmitStopsOnListenerError(t *testing.T) {
	bus := New()
	boom := errors.New("boom")
	var reached bool

	bus.
		Subscribe(ping{}, Typed(func(ctx context.Context, ev ping) error {
			return boom
		})).
		Subscribe(ping{}, Typed(func(ctx context.Context, ev ping) error {
			reached = true
			return nil
		}))

	assert.ErrorIs(t, bus.Emit(context.Background(), ping{}), boom)
	assert.False(t, reached)
}

func TestTypedRejectsWrongType(t *testing.T) {
	listener := Typed(func(ctx context.Context, ev ping) error { return nil })
	assert.Error(t, listener(context.Background(), pong{}))
}
