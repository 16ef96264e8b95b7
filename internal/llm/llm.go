package llm

import (
	"context"
)

// LLM defines the interface for language model providers backing the
// shop assistant.
type LLM interface {

	// GenerateResponse generates a response from the LLM given a prompt
	GenerateResponse(ctx context.Context, prompt string) (string, error)

	// IsModelAvailable checks if the configured model is available
	IsModelAvailable(ctx context.Context) error
}
