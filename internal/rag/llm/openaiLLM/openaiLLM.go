package openaiLLM

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocAssist/internal/rag/llm"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type Client struct {
	api         openai.Client
	tiers       llm.Tiers
	temperature float64
	logger      *logger_i.Logger
}

func New(apiKey string, tiers llm.Tiers, temperature float32, httpClient *http.Client, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, errorModel.Configuration("openai completion", errors.New("OPENAI_API_KEY is not set"))
	}
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if httpClient != nil {
		base = append(base, option.WithHTTPClient(httpClient))
	}
	return &Client{
		api:         openai.NewClient(append(base, opts...)...),
		tiers:       tiers,
		temperature: float64(temperature),
		logger:      logger_i.NewLogger("openai llm"),
	}, nil
}

func (c *Client) Generate(ctx context.Context, req llm.CompletionRequest) (string, error) {
	tier := c.tiers.For(req.Tier)
	log := c.logger.FromContext(ctx).With("model", tier.Model)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(tier.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(c.temperature),
	}
	if tier.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(tier.MaxTokens))
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error("completion failed", "error", err)
		return "", openaiEmbedding.Classify(err)
	}
	if len(completion.Choices) == 0 {
		return "", errorModel.Transient("openai completion", errors.New("no completion choices returned"))
	}
	log.Debug("completion done", "totalTokens", completion.Usage.TotalTokens)
	return completion.Choices[0].Message.Content, nil
}
