// Package gemini implements the translation provider on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
	"google.golang.org/genai"
)

// ErrEmptyReply is returned when a response carries no text.
var ErrEmptyReply = errors.New("gemini: reply has no text")

// Config holds the client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Provider sends translation batches with a JSON response MIME type.
type Provider struct {
	model  string
	client *genai.Client
}

// New returns a provider for the Gemini API backend.
func New(ctx context.Context, config Config) (*Provider, error) {
	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions.BaseURL = config.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}
	return &Provider{model: config.Model, client: client}, nil
}

// Name returns the model name.
func (p *Provider) Name() string {
	return p.model
}

// Complete implements translate.Provider.
func (p *Provider) Complete(ctx context.Context, req translate.Request) (*translate.Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, ""),
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(req.Payload, genai.RoleUser)}
	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	resp := &translate.Response{}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = &translate.Usage{
			PromptTokens:     int64(u.PromptTokenCount),
			CompletionTokens: int64(u.CandidatesTokenCount),
		}
	}
	var text string
	if len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && !part.Thought {
				text += part.Text
			}
		}
	}
	if text == "" {
		return resp, ErrEmptyReply
	}
	resp.Content = text
	return resp, nil
}

// ValidateKey checks the API key by listing the available models.
func (p *Provider) ValidateKey(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		return fmt.Errorf("validate api key: %w", err)
	}
	return nil
}
