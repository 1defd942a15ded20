package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultGrokModel = "grok-2-vision-latest"
	xaiBaseURL       = "https://api.x.ai/v1"
)

// Grok extracts receipts with the xAI Grok API, which speaks the
// OpenAI-compatible chat completions protocol.
type Grok struct {
	client *openai.Client
	model  string
}

// NewGrok creates the Grok provider.
func NewGrok(apiKey string) *Grok {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = xaiBaseURL
	return &Grok{
		client: openai.NewClientWithConfig(cfg),
		model:  defaultGrokModel,
	}
}

func (g *Grok) Name() string { return "grok" }

// Extract sends the receipt image as a data URL with the shared prompt
// and parses the model's JSON reply.
func (g *Grok) Extract(ctx context.Context, image []byte, mimeType string) (*Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: 512,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: buildPrompt(),
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling xai API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	return parseResponse(resp.Choices[0].Message.Content)
}
