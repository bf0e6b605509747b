package llm

import (
	"context"
)

// Options are the decoding options applied to every generation request.
// Low temperature and a fixed seed keep model output as repeatable as
// the provider allows.
type Options struct {
	Temperature float32
	TopP        float32
	Seed        int
}

type LLMClient interface {
	// Generate runs one chat completion with a system instruction and a
	// user prompt, returning the raw text of the first choice.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// Available probes the service without side effects (list-models or
	// equivalent). A nil return means the generative path may be taken.
	Available(ctx context.Context) error
}

type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
