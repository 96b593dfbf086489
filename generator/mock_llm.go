package generator

import (
	"context"
	"errors"
	"strings"
)

// MockLLM is a stand-in client for local runs without an API key. It echoes
// the request back as a minimal markdown draft.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("# Sample Draft\n\n")
	sb.WriteString("This placeholder draft was produced without calling the model.\n\n")
	sb.WriteString("## Requested\n\n")
	sb.WriteString("```\n")
	sb.WriteString(prompt.User)
	sb.WriteString("\n```\n")
	return sb.String(), nil
}

// Generate satisfies ImageClient; image generation is not useful in mock
// mode, so it always fails.
func (m MockLLM) Generate(_ context.Context, _ string) (string, error) {
	return "", errors.New("mock llm does not render images")
}
