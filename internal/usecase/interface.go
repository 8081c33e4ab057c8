package usecase

import "context"

// ModelBackend is one identification model variant in the fallback
// chain. Generate submits a single inlined image with an instruction
// prompt and returns the model's raw text.
type ModelBackend interface {
	Name() string
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
