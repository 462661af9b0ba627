package services

import "context"

// LLMService is the narrow interface the command parser speaks to a language
// model through. Implementations must be safe for concurrent use.
type LLMService interface {
	// IsConfigured reports whether the service has credentials and can be
	// called. An unconfigured service is not an error; callers fall back
	// to rule-based parsing.
	IsConfigured() bool

	// GenerateText sends a single system + user prompt pair and returns the
	// raw completion text. Failures surface as errors and are recovered by
	// the caller, never by the player.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error)
}
