package generator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ai_blog_writer/retry"
)

// ErrGeneration marks a text or image generation that failed after retries.
// The underlying cause message is preserved in the wrapped error.
var ErrGeneration = errors.New("generation failed")

// Agent drafts blog content from a Request.
type Agent struct {
	llm     LLMClient
	policy  retry.Policy
	verbose bool
	logger  *log.Logger
}

// NewAgent wires an LLM client with the default retry policy.
func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm, policy: retry.DefaultPolicy(), logger: log.Default()}, nil
}

// WithRetryPolicy overrides the retry policy, mainly for tests.
func (a *Agent) WithRetryPolicy(p retry.Policy) *Agent {
	a.policy = p
	return a
}

// WithVerbose enables info logs on the given logger.
func (a *Agent) WithVerbose(logger *log.Logger) *Agent {
	a.verbose = true
	if logger != nil {
		a.logger = logger
	}
	return a
}

func (a *Agent) infof(format string, args ...interface{}) {
	if !a.verbose {
		return
	}
	a.logger.Printf("[INFO] "+format, args...)
}

// Generate builds the prompt, calls the LLM with retry, normalizes internal
// links, and counts words. Any failure from the call boundary is folded into
// ErrGeneration after the retry budget is spent.
func (a *Agent) Generate(ctx context.Context, req Request) (Content, error) {
	if req.Title == "" {
		return Content{}, errors.New("title is required")
	}
	if len(req.Keywords) == 0 {
		return Content{}, errors.New("at least one keyword is required")
	}

	prompt := BuildPrompt(req)
	a.infof("Drafting %q (%d words, %s tone)", req.Title, req.TargetWordCount(), req.Tone)

	var raw string
	err := a.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		raw, err = a.llm.Complete(ctx, prompt)
		return err
	})
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	md := NormalizeInternalLinks(raw)
	a.infof("Draft complete, %d words", CountWords(md))
	return Content{
		Markdown:  md,
		WordCount: CountWords(md),
	}, nil
}
