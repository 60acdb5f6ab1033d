package bridge

import (
	"context"

	"gitlab.com/tozd/go/errors"
	"google.golang.org/genai"
)

// GenAIGenerator generates content through the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
}

var _ Generator = (*GenAIGenerator)(nil)

// NewGenAIGenerator creates a Gemini API client for a credential. It matches
// GeneratorFactory.
func NewGenAIGenerator(ctx context.Context, credential string) (Generator, error) {
	if credential == "" {
		return nil, errors.WithStack(ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Errorf("creating gemini client: %w", err)
	}

	return &GenAIGenerator{client: client}, nil
}

// Generate runs a single-turn generation.
func (g *GenAIGenerator) Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (*Generation, error) {
	temperature := opts.Temperature
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: opts.MaxTokens,
		Temperature:     &temperature,
	})
	if err != nil {
		if status := apiStatus(err); status != "" {
			return nil, &typedError{kind: status, err: err}
		}
		return nil, errors.Errorf("generating content: %w", err)
	}

	out := &Generation{Text: resp.Text()}
	if usage := resp.UsageMetadata; usage != nil {
		out.PromptTokens = nonZero(usage.PromptTokenCount)
		out.ResponseTokens = nonZero(usage.CandidatesTokenCount)
		out.TotalTokens = nonZero(usage.TotalTokenCount)
	}
	return out, nil
}

func nonZero(n int32) *int32 {
	if n == 0 {
		return nil
	}
	return &n
}

// apiStatus extracts the status of a Gemini API error, e.g. "INVALID_ARGUMENT".
func apiStatus(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Status
	}
	return ""
}
