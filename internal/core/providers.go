package core

import "context"

type AIProvider interface {
	Generate(ctx context.Context, messages []Message) (Reply, error)
}

// StreamingProvider is implemented by backends that can yield
// incremental deltas. The final Reply carries the usage report.
type StreamingProvider interface {
	AIProvider
	GenerateStream(ctx context.Context, messages []Message, onDelta func(delta string)) (Reply, error)
}
