package srv

import (
	"context"

	"github.com/carelog/carebot/pkg/log"
)

// Service is a long-running component with a lifecycle tied to the
// process: transports, background workers, cleanups.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}(service)
	}
}

// ShutdownServices blocks until ctx is done, then shuts services down
// in reverse registration order.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	logger := log.FromCtx(ctx)
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shut down", services[i])
		}
	}
}
