package llm

import (
	"context"
	"strings"
)

// Router maps the public model identifiers (gpt-5.2, claude-sonnet-4.5,
// gemini-3-flash) onto the provider that serves each family. Unknown
// identifiers fall back to the default provider.
type Router struct {
	providers map[string]Provider
	fallback  Provider
}

func NewRouter(fallback Provider) *Router {
	return &Router{providers: map[string]Provider{}, fallback: fallback}
}

// RegisterPrefix binds every model id starting with prefix to p.
func (r *Router) RegisterPrefix(prefix string, p Provider) {
	r.providers[prefix] = p
}

func (r *Router) Pick(model string) Provider {
	for prefix, p := range r.providers {
		if strings.HasPrefix(model, prefix) {
			return p
		}
	}
	return r.fallback
}

func (r *Router) Complete(ctx context.Context, model, system, prompt string) (string, error) {
	return r.Pick(model).Complete(ctx, system, prompt)
}

func (r *Router) StreamAnswer(ctx context.Context, model, system, prompt string) (<-chan string, <-chan error) {
	return r.Pick(model).StreamAnswer(ctx, system, prompt)
}

func (r *Router) Close() error {
	seen := map[Provider]bool{}
	var first error
	for _, p := range r.providers {
		if seen[p] {
			continue
		}
		seen[p] = true
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	if r.fallback != nil && !seen[r.fallback] {
		if err := r.fallback.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
