package ebus

import (
	"context"
	"fmt"
)

type Listener func(ctx context.Context, event any) error

// Typed adapts a handler of one concrete event type to the Listener
// signature, failing on a type mismatch.
func Typed[T any](fn func(ctx context.Context, typed T) error) Listener {
	return func(ctx context.Context, event any) error {
		typed, ok := event.(T)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		return fn(ctx, typed)
	}
}
