// Package anthropic implements the translation provider on the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
)

// DefaultMaxTokens bounds the reply of one batch.
const DefaultMaxTokens = 8192

// ErrEmptyReply is returned when a message carries no text block.
var ErrEmptyReply = errors.New("anthropic: reply has no text")

// Config holds the client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	MaxRetries int
	// RequestOptions are appended after the options derived from the fields above.
	RequestOptions []option.RequestOption
}

// Provider sends translation batches as single-turn messages.
type Provider struct {
	model     string
	maxTokens int64
	client    anthropic.Client
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
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Provider{
		model:     config.Model,
		maxTokens: maxTokens,
		client:    anthropic.NewClient(opts...),
	}
}

// Name returns the model name.
func (p *Provider) Name() string {
	return p.model
}

// Complete implements translate.Provider. The Messages API has no JSON
// mode, so the object is requested by the system prompt alone and the
// text blocks of the reply are joined.
func (p *Provider) Complete(ctx context.Context, req translate.Request) (*translate.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Payload)),
		},
	}
	var opts []option.RequestOption
	if req.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(req.Timeout))
	}
	message, err := p.client.Messages.New(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	resp := &translate.Response{
		Usage: &translate.Usage{
			PromptTokens:     message.Usage.InputTokens,
			CompletionTokens: message.Usage.OutputTokens,
		},
	}
	var sb strings.Builder
	for _, block := range message.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return resp, ErrEmptyReply
	}
	resp.Content = sb.String()
	return resp, nil
}

// ValidateKey checks the API key by listing the available models.
func (p *Provider) ValidateKey(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("validate api key: %w", err)
	}
	return nil
}
