// Package gateway wraps the remote AI services atelier delegates to.
//
// ChatProvider is the abstract interface for conversational models.
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific error handling
//
// Every exchange ships the optional system instruction and the full
// role-tagged history; the remote side holds no conversation state
// between calls.

package gateway

import (
	"context"
)

// ChatProvider defines the abstract interface for conversational providers.
type ChatProvider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Chat sends one turn exchange: the ordered history plus the new
	// user message, returning the model's reply.
	Chat(ctx context.Context, messages []ChatMessage) (Reply, error)
}
