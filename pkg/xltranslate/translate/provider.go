package translate

import (
	"context"
	"time"
)

// Request is one completion call.
type Request struct {
	// System is the system instruction.
	System string
	// Payload is the user message: a JSON object mapping batch keys to source text.
	Payload string
	// Timeout bounds the call. Zero means no timeout beyond ctx.
	Timeout time.Duration
}

// Response is the provider reply.
type Response struct {
	// Content is the raw text content of the reply.
	Content string
	// Usage holds the token counts reported with the reply, if any.
	Usage *Usage
}

// Provider performs completion calls that return a JSON object.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, req Request) (*Response, error)

// Complete calls f(ctx, req).
func (f ProviderFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
