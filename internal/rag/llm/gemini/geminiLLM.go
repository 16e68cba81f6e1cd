package gemini

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocAssist/internal/rag/llm"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client      *genai.Client
	tiers       llm.Tiers
	temperature float32
	logger      *logger_i.Logger
}

func New(ctx context.Context, apiKey string, tiers llm.Tiers, temperature float32, httpClient *http.Client) (llm.Provider, error) {
	if apiKey == "" {
		return nil, errorModel.Configuration("gemini", errors.New("GOOGLE_API_KEY is not set"))
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, errorModel.Configuration("gemini", err)
	}
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("gemini client created", "standard", tiers.Standard.Model, "advanced", tiers.Advanced.Model)
	return &llmClient{client: c, tiers: tiers, temperature: temperature, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, req llm.CompletionRequest) (string, error) {
	tier := c.tiers.For(req.Tier)
	log := c.logger.FromContext(ctx).With("model", tier.Model)

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: int32(tier.MaxTokens),
	}

	result, err := c.client.Models.GenerateContent(ctx, tier.Model, genai.Text(req.Prompt), contentConfig)
	if err != nil {
		log.Error("generation failed", "error", err)
		return "", googleEmbedding.Classify(err)
	}
	text := result.Text()
	if text == "" {
		return "", errorModel.Transient("gemini", errors.New("empty completion"))
	}
	return text, nil
}
