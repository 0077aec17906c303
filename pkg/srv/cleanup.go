package srv

import "context"

type cleanupService struct {
	cleanup func() error
}

// NewCleanup wraps a close function as a Service so it participates in
// ordered shutdown.
func NewCleanup(cleanup func() error) Service {
	return &cleanupService{cleanup: cleanup}
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup != nil {
		return c.cleanup()
	}
	return nil
}
