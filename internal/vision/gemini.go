package vision

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini extracts receipts with the Google Gemini API.
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini creates the Gemini provider. The key may be empty, in which
// case the genai client falls back to its own environment lookup.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{apiKey: apiKey, model: defaultGeminiModel}
}

func (g *Gemini) Name() string { return "gemini" }

// Extract sends the receipt image inline with the shared prompt and
// parses the model's JSON reply.
func (g *Gemini) Extract(ctx context.Context, image []byte, mimeType string) (*Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
				{Text: buildPrompt()},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: 512,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return parseResponse(rawText)
}
