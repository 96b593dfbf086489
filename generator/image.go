package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"time"

	"ai_blog_writer/retry"
)

const imageFetchTimeout = 60 * time.Second

// ImageAgent renders a featured image: one API call for the hosted URL, then
// a synchronous fetch and decode. The whole sequence sits inside the retry
// policy, so a bad download or corrupt bytes get a fresh render on the next
// attempt.
type ImageAgent struct {
	client  ImageClient
	http    *http.Client
	policy  retry.Policy
	verbose bool
	logger  *log.Logger
}

func NewImageAgent(client ImageClient, httpClient *http.Client) (*ImageAgent, error) {
	if client == nil {
		return nil, errors.New("image client is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: imageFetchTimeout}
	}
	return &ImageAgent{client: client, http: httpClient, policy: retry.DefaultPolicy(), logger: log.Default()}, nil
}

// WithRetryPolicy overrides the retry policy, mainly for tests.
func (a *ImageAgent) WithRetryPolicy(p retry.Policy) *ImageAgent {
	a.policy = p
	return a
}

// WithVerbose enables info logs on the given logger.
func (a *ImageAgent) WithVerbose(logger *log.Logger) *ImageAgent {
	a.verbose = true
	if logger != nil {
		a.logger = logger
	}
	return a
}

func (a *ImageAgent) infof(format string, args ...interface{}) {
	if !a.verbose {
		return
	}
	a.logger.Printf("[INFO] "+format, args...)
}

// Generate returns the decoded image plus its prompt and hosted URL, or
// ErrGeneration after the retry budget is spent.
func (a *ImageAgent) Generate(ctx context.Context, prompt string) (FeaturedImage, error) {
	if prompt == "" {
		return FeaturedImage{}, errors.New("image prompt is required")
	}

	var result FeaturedImage
	err := a.policy.Do(ctx, func(ctx context.Context) error {
		url, err := a.client.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		a.infof("Image rendered, fetching %s", url)

		img, err := a.fetch(ctx, url)
		if err != nil {
			return err
		}
		result = FeaturedImage{Image: img, Prompt: prompt, SourceURL: url}
		return nil
	})
	if err != nil {
		return FeaturedImage{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return result, nil
}

func (a *ImageAgent) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %v", err)
	}
	return img, nil
}
