// Package ebus is a minimal synchronous in-process event bus.
// Listeners run on the emitter's goroutine, in subscription order,
// and the first listener error stops the dispatch.
package ebus

import (
	"context"
	"reflect"
	"sync"
)

type EBus struct {
	listeners map[reflect.Type][]Listener
	mx        sync.RWMutex
}

func New() *EBus {
	return &EBus{
		listeners: make(map[reflect.Type][]Listener),
	}
}

// Subscribe registers a listener for the concrete type of event.
func (e *EBus) Subscribe(event any, handler Listener) *EBus {
	e.mx.Lock()
	defer e.mx.Unlock()

	t := reflect.TypeOf(event)
	e.listeners[t] = append(e.listeners[t], handler)

	return e
}

// Emit dispatches event to its listeners. Emitting a type nobody
// subscribed to is a no-op.
func (e *EBus) Emit(ctx context.Context, event any) error {
	e.mx.RLock()
	handlers := e.listeners[reflect.TypeOf(event)]
	e.mx.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}

	return nil
}
