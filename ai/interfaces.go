package ai

import "context"

// Generator produces one text completion per call.
// Implementations must be thread-safe for concurrent use and must not keep
// conversation state between calls: each request stands alone.
type Generator interface {
	// Generate sends a single completion request built from the system and
	// user prompts and returns the raw response text.
	// Returns an error if the request fails or the model returns no output.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions holds per-request generation parameters.
type GenerateOptions struct {
	// Temperature controls sampling randomness. Stages that parse structured
	// output use low values for consistency.
	Temperature float64

	// MaxTokens bounds the response length. Zero means the provider default.
	MaxTokens int

	// JSONMode requests strict-JSON output from providers that support it.
	// Callers must still validate the response shape.
	JSONMode bool
}
