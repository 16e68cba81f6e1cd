package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
)

// Embedder turns one chunk or query into a fixed-length vector. Implementations
// return errorModel kinds: RateLimited, Transient, InvalidInput or
// Authentication. They do not retry or cache.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimension() int
}

// CheckVector rejects a response whose length does not match the configured dimension.
func CheckVector(op string, vector []float32, dimension int) error {
	if len(vector) == 0 {
		return errorModel.Transient(op, fmt.Errorf("empty embedding returned"))
	}
	if dimension > 0 && len(vector) != dimension {
		return errorModel.Configuration(op, fmt.Errorf("embedding has %d dimensions, expected %d", len(vector), dimension))
	}
	return nil
}
