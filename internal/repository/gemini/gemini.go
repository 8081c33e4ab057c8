package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// NewClient builds one shared Gemini API client; every Backend in the
// fallback chain reuses it.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	const op = "gemini.NewClient"

	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key is required", op)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// Backend is one model variant behind the resolver's ModelBackend port.
type Backend struct {
	client *genai.Client
	model  string
}

func NewBackend(client *genai.Client, model string) *Backend {
	return &Backend{
		client: client,
		model:  model,
	}
}

func (b *Backend) Name() string {
	return b.model
}

// Generate submits the instruction prompt with the image inlined and
// returns the model's raw text for the caller to parse.
func (b *Backend) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	const op = "gemini.Generate"

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	res, err := b.client.Models.GenerateContent(ctx, b.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, b.model, err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("%s: %s returned empty text", op, b.model)
	}
	return text, nil
}
