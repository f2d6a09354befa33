// Package openai implements the translation provider on the OpenAI chat
// completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
)

// ErrEmptyReply is returned when a completion carries no choices.
var ErrEmptyReply = errors.New("openai: reply has no choices")

// Config holds the client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	// RequestOptions are appended after the options derived from the fields above.
	RequestOptions []option.RequestOption
}

// Provider sends translation batches as JSON-mode chat completions.
type Provider struct {
	model  string
	client openai.Client
}

// New returns a provider for the given model.
func New(config Config) *Provider {
	opts := []option.RequestOption{option.WithMaxRetries(config.MaxRetries)}
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	opts = append(opts, config.RequestOptions...)
	return &Provider{
		model:  config.Model,
		client: openai.NewClient(opts...),
	}
}

// Name returns the model name.
func (p *Provider) Name() string {
	return p.model
}

// Complete implements translate.Provider.
func (p *Provider) Complete(ctx context.Context, req translate.Request) (*translate.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Payload),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	var opts []option.RequestOption
	if req.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(req.Timeout))
	}
	cc, err := p.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	resp := &translate.Response{
		Usage: &translate.Usage{
			PromptTokens:     cc.Usage.PromptTokens,
			CompletionTokens: cc.Usage.CompletionTokens,
		},
	}
	if len(cc.Choices) == 0 {
		return resp, ErrEmptyReply
	}
	resp.Content = cc.Choices[0].Message.Content
	return resp, nil
}

// ValidateKey checks the API key by listing the available models.
func (p *Provider) ValidateKey(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("validate api key: %w", err)
	}
	return nil
}
