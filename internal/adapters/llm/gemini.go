package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/productibot/internal/domain"
)

const providerGemini = "gemini"

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a Generator backed by the Gemini API.
// A missing key is a configuration error, not a provider error.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, domain.ErrNotConfigured
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &domain.ConfigurationError{Reason: "creating Gemini client", Err: err}
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

func (g *GeminiClient) ModelName() string {
	return g.modelName
}

// Generate implements domain.Generator. The prompt is sent as a single
// user turn; cfg is passed through without clamping.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	temp := cfg.Temperature
	topP := cfg.TopP

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
	if err != nil {
		return "", domain.NewProviderError(providerGemini, fmt.Errorf("generate content: %w", err))
	}

	text := res.Text()
	if text == "" {
		return "", domain.NewProviderError(providerGemini, errors.New("provider returned empty text"))
	}

	return text, nil
}
