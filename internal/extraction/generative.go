package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/rolodex/internal/llm"
)

// flexString tolerates the inconsistent scalar shapes models emit:
// strings, numbers (a bare ZIP code), or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// rawPhone is the tagged union for a phone entry, which models return
// either as an object or as a bare string. The shape is resolved here at
// the parse boundary instead of by downstream type inspection.
type rawPhone struct {
	Number    string
	Extension string
	Type      string
	Bare      bool
}

func (p *rawPhone) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*p = rawPhone{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = rawPhone{Number: s, Bare: true}
		return nil
	}
	var obj struct {
		Number    flexString `json:"number"`
		Extension flexString `json:"extension"`
		Type      flexString `json:"type"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*p = rawPhone{
		Number:    string(obj.Number),
		Extension: string(obj.Extension),
		Type:      string(obj.Type),
	}
	return nil
}

type rawAddress struct {
	Unit       flexString `json:"unit"`
	Street     flexString `json:"street"`
	City       flexString `json:"city"`
	State      flexString `json:"state"`
	PostalCode flexString `json:"postal_code"`
	Country    flexString `json:"country"`
}

type rawContact struct {
	ClientName   flexString  `json:"client_name"`
	CompanyName  flexString  `json:"company_name"`
	Email        flexString  `json:"email"`
	PhoneNumbers []rawPhone  `json:"phone_numbers"`
	Address      *rawAddress `json:"address"`
	Notes        flexString  `json:"notes"`
}

// generativeClient issues the structured-extraction request and repairs
// malformed output. All failure modes collapse to an error return after
// the attempt budget; it never panics upward.
type generativeClient struct {
	llm         llm.LLMClient
	maxAttempts int
	logger      *zap.Logger
}

func newGenerativeClient(llmClient llm.LLMClient, maxAttempts int, logger *zap.Logger) *generativeClient {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &generativeClient{llm: llmClient, maxAttempts: maxAttempts, logger: logger}
}

// extract runs up to maxAttempts synchronous attempts with the same
// prompt and no backoff. A cancelled context stops the retry loop
// immediately instead of burning the remaining attempts.
func (g *generativeClient) extract(ctx context.Context, text string) (*rawContact, error) {
	prompt := fmt.Sprintf(extractionPrompt, text)

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		response, err := g.llm.Generate(ctx, systemPrompt, prompt)
		if err != nil {
			lastErr = err
			g.logger.Warn("llm generation failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		g.logger.Debug("llm response",
			zap.Int("attempt", attempt),
			zap.String("head", truncate(response, 500)))

		raw, err := ParseJSON[rawContact](response)
		if err != nil {
			lastErr = err
			g.logger.Warn("malformed model output",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		return &raw, nil
	}
	return nil, fmt.Errorf("model produced no parseable output after %d attempts: %w", g.maxAttempts, lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
