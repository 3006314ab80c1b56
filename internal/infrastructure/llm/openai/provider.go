// Package openai adapts the OpenAI chat completions API to
// ports.CompletionProvider.
package openai

import (
	"context"
	"errors"
	"fmt"

	oai "github.com/sashabaranov/go-openai"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

const DefaultModel = oai.GPT4o

// Config captures the settings for the OpenAI client. BaseURL is optional and
// points the client at a compatible gateway.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

type Provider struct {
	client *oai.Client
	model  string
}

func NewProvider(cfg Config) *Provider {
	oc := oai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: oai.NewClientWithConfig(oc), model: model}
}

// Complete returns the content of the first choice, or "" when the model
// produced none.
func (p *Provider) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, oai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toChatMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		var apiErr *oai.APIError
		if errors.As(err, &apiErr) {
			return "", domain.NewUpstreamError(fmt.Errorf("openai %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return "", domain.NewUpstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toChatMessages(msgs []domain.ProviderMessage) []oai.ChatCompletionMessage {
	out := make([]oai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := oai.ChatCompletionMessage{Role: string(m.Role)}
		if !m.IsComposite() {
			cm.Content = m.Text
			out = append(out, cm)
			continue
		}
		cm.MultiContent = make([]oai.ChatMessagePart, 0, len(m.Parts))
		for _, part := range m.Parts {
			switch part.Type {
			case domain.ContentPartImage:
				cm.MultiContent = append(cm.MultiContent, oai.ChatMessagePart{
					Type:     oai.ChatMessagePartTypeImageURL,
					ImageURL: &oai.ChatMessageImageURL{URL: part.ImageURL},
				})
			default:
				cm.MultiContent = append(cm.MultiContent, oai.ChatMessagePart{
					Type: oai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			}
		}
		out = append(out, cm)
	}
	return out
}
