package generator

import "context"

// LLMClient abstracts the text-generation API so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// ImageClient abstracts the image-generation API. Generate returns the hosted
// URL of one rendered image.
type ImageClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMSettings carries the provider configuration for concrete clients.
type LLMSettings struct {
	Model      string
	ImageModel string
	APIKey     string
	BaseURL    string
}
