package llm

import "context"

// Provider is an opaque remote model. Implementations must be safe for
// concurrent use.
type Provider interface {
	// Complete returns the full answer for one prompt.
	Complete(ctx context.Context, system, prompt string) (string, error)
	// StreamAnswer returns a stream of text chunks (incremental).
	StreamAnswer(ctx context.Context, system, prompt string) (chunks <-chan string, errs <-chan error)
	Close() error
}
