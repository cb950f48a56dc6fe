package app

import (
	"context"
)

// Service is anything that runs until its context is cancelled.
type Service interface {
	Run(ctx context.Context) error
}

func actor(ctx context.Context, service Service) (func() error, func(err error)) {
	ctx, cancel := context.WithCancelCause(ctx)

	return func() error {
			return service.Run(ctx)
		}, func(err error) {
			cancel(err)
		}
}
