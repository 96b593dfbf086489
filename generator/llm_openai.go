package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generation parameters are fixed: output is intentionally non-deterministic
// per call (temperature above zero).
const (
	chatTemperature = 0.7
	chatMaxTokens   = 4000
)

// OpenAILLM implements LLMClient and ImageClient using the official
// openai-go SDK (chat completions + image generations).
type OpenAILLM struct {
	Model      string
	ImageModel string
	Opts       []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAILLM{Model: cfg.Model, ImageModel: cfg.ImageModel, Opts: opts}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(chatTemperature),
		MaxTokens:   openai.Int(chatMaxTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Generate requests one square 1024x1024 standard-quality image and returns
// its hosted URL.
func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(o.Opts...)

	model := o.ImageModel
	if model == "" {
		model = "dall-e-3"
	}
	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  prompt,
		Model:   openai.ImageModel(model),
		Size:    openai.ImageGenerateParamsSize1024x1024,
		Quality: openai.ImageGenerateParamsQualityStandard,
		N:       openai.Int(1),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("openai: no image url returned")
	}
	return resp.Data[0].URL, nil
}
