package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/rag/embedding"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Client struct {
	api       openai.Client
	model     string
	dimension int
	guard     *embedding.TokenGuard
	logger    *logger_i.Logger
}

// New builds an embedder for model. Retries are left to the caller, so the
// SDK's own retry loop is switched off.
func New(apiKey, model string, dimension int, guard *embedding.TokenGuard, httpClient *http.Client, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, errorModel.Configuration("openai embedding", errors.New("OPENAI_API_KEY is not set"))
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		base = append(base, option.WithHTTPClient(httpClient))
	}
	return &Client{
		api:       openai.NewClient(append(base, opts...)...),
		model:     model,
		dimension: dimension,
		guard:     guard,
		logger:    logger_i.NewLogger("openai embedding"),
	}, nil
}

func (c *Client) Model() string  { return c.model }
func (c *Client) Dimension() int { return c.dimension }

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if err := c.guard.Check(text); err != nil {
		return nil, err
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	}
	if c.dimension > 0 {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	resp, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		classified := Classify(err)
		c.logger.FromContext(ctx).Debug("embedding call failed", "kind", errorModel.KindOf(classified))
		return nil, classified
	}
	if len(resp.Data) == 0 {
		return nil, errorModel.Transient("openai embed", errors.New("no embeddings returned"))
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float32(v)
	}
	if err := embedding.CheckVector("openai embed", vector, c.dimension); err != nil {
		return nil, err
	}
	return vector, nil
}

// Classify maps an openai SDK error onto the error taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	const op = "openai"
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errorModel.Transient(op, err)
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		// connection resets, DNS failures and the like
		return errorModel.Transient(op, err)
	}
	wrapped := fmt.Errorf("status %d: %s", apiErr.StatusCode, apiErr.Message)
	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return errorModel.RateLimited(op, wrapped)
	case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
		return errorModel.Auth(op, wrapped)
	case apiErr.StatusCode == http.StatusNotFound:
		return errorModel.Configuration(op, wrapped)
	case apiErr.StatusCode == http.StatusBadRequest,
		apiErr.StatusCode == http.StatusRequestEntityTooLarge,
		apiErr.StatusCode == http.StatusUnprocessableEntity:
		return errorModel.InvalidInput(op, wrapped)
	default:
		return errorModel.Transient(op, wrapped)
	}
}
