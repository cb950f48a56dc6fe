// Package watcher periodically pulls snapshots of engine state and
// republishes them on the bus for the outbound surfaces.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/openlend/lendsight/pkg/ebus"
)

type watch struct {
	frame  time.Duration
	getter func(ctx context.Context) (any, error)
}

type Watcher struct {
	eBus *ebus.EBus
	subs []watch
	mx   sync.Mutex
}

func NewWatcher(eBus *ebus.EBus) *Watcher {
	return &Watcher{
		eBus: eBus,
	}
}

// EmitEvery schedules getter to run once per frame and emits whatever
// it returns.
func (w *Watcher) EmitEvery(frame time.Duration, getter func(ctx context.Context) (any, error)) *Watcher {
	w.mx.Lock()
	defer w.mx.Unlock()

	w.subs = append(w.subs, watch{frame: frame, getter: getter})
	return w
}

func (w *Watcher) Run(ctx context.Context) error {
	w.mx.Lock()
	defer w.mx.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error)

	for i := range w.subs {
		go func(i int) {
			sub := w.subs[i]

			ticker := time.NewTicker(sub.frame)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					ins, err := sub.getter(ctx)
					if err != nil {
						select {
						case errs <- err:
						case <-ctx.Done():
						}
						return
					}
					_ = w.eBus.Emit(ctx, ins)
				}
			}
		}(i)
	}

	select {
	case err := <-errs:
		return fmt.Errorf("watcher: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogAny is a catch-all bus listener for debugging.
func LogAny[T any](ctx context.Context, event T) error {
	slog.Debug("event", "type", reflect.TypeOf(event).Name(), "payload", event)
	return nil
}
