package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/rag/embedding"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const taskRetrievalDocument = "RETRIEVAL_DOCUMENT"

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	guard     *embedding.TokenGuard
	logger    *logger_i.Logger
}

func New(ctx context.Context, apiKey, model string, dimension int, guard *embedding.TokenGuard, httpClient *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, errorModel.Configuration("google embedding", errors.New("GOOGLE_API_KEY is not set"))
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, errorModel.Configuration("google embedding", err)
	}
	logger := logger_i.NewLogger("google embedding")
	logger.Info("google embedding client created", "model", model)
	return &Client{
		genAi:     c,
		model:     model,
		dimension: int32(dimension),
		guard:     guard,
		logger:    logger,
	}, nil
}

func (c *Client) Model() string  { return c.model }
func (c *Client) Dimension() int { return int(c.dimension) }

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if err := c.guard.Check(text); err != nil {
		return nil, err
	}
	dim := c.dimension
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
		TaskType:             taskRetrievalDocument,
	})
	if err != nil {
		classified := Classify(err)
		c.logger.FromContext(ctx).Debug("embedding call failed", "kind", errorModel.KindOf(classified))
		return nil, classified
	}
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errorModel.Transient("google embed", errors.New("no embeddings returned"))
	}
	vector := result.Embeddings[0].Values
	if err := embedding.CheckVector("google embed", vector, int(c.dimension)); err != nil {
		return nil, err
	}
	return vector, nil
}

// Classify maps genai REST errors and gRPC statuses onto the error taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	const op = "gemini"
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errorModel.Transient(op, err)
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		return fromHTTPCode(op, apiErr.Code, apiErr.Status, err)
	case errors.As(err, &apiErrPtr):
		return fromHTTPCode(op, apiErrPtr.Code, apiErrPtr.Status, err)
	}

	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		switch s.Code() {
		case codes.ResourceExhausted:
			return errorModel.RateLimited(op, err)
		case codes.Unauthenticated, codes.PermissionDenied:
			return errorModel.Auth(op, err)
		case codes.InvalidArgument:
			return errorModel.InvalidInput(op, err)
		case codes.NotFound:
			return errorModel.Configuration(op, err)
		}
	}
	return errorModel.Transient(op, err)
}

func fromHTTPCode(op string, code int, state string, err error) error {
	wrapped := fmt.Errorf("status %d %s: %w", code, state, err)
	switch {
	case code == http.StatusTooManyRequests || state == "RESOURCE_EXHAUSTED":
		return errorModel.RateLimited(op, wrapped)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errorModel.Auth(op, wrapped)
	case code == http.StatusNotFound:
		return errorModel.Configuration(op, wrapped)
	case code == http.StatusBadRequest:
		return errorModel.InvalidInput(op, wrapped)
	default:
		return errorModel.Transient(op, wrapped)
	}
}
