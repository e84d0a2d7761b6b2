package ports

import "context"

type CompletionRequest struct {
	Content string
	User    string
	Prompt  string
	// RequestID correlates the call with client-side logs.
	RequestID string
}

type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
