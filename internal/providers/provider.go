// Package providers holds the network-bound collaborators the scoring
// engine depends on: model API clients, link resolution, and the
// adequacy/overlap scorers. All retry, backoff, and timeout policy lives
// here; the scoring engine only sees synchronous calls with definite
// results.
package providers

import "context"

// CompletionRequest is one prompt sent to a hosted model.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
}

// ModelClient fetches a model response for a prompt.
type ModelClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	ModelID() string
}
