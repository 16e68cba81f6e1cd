package vectorDB

import (
	"context"
	"math"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
)

// ChunkStore persists the chunks of each document and answers similarity queries.
type ChunkStore interface {
	// ReplaceChunks makes chunks the complete set for documentID, atomically.
	ReplaceChunks(ctx context.Context, documentID string, chunks []commonModels.Chunk) error
	// Search returns at most topK chunks scoring >= threshold, best first,
	// newer chunks first on equal score.
	Search(ctx context.Context, query []float32, topK int, threshold float64) ([]commonModels.RetrievalResult, error)
	DeleteDocument(ctx context.Context, documentID string) error
	CountChunks(ctx context.Context, documentID string) (int, error)
}

type CachedAnswer struct {
	Answer  string
	Sources []chatModel.Source
	Score   float32
}

// AnswerCache is the semantic cache of previously composed answers.
type AnswerCache interface {
	Lookup(ctx context.Context, vector []float32, mode chatModel.Mode, tier chatModel.Tier) (CachedAnswer, bool, error)
	Store(ctx context.Context, vector []float32, mode chatModel.Mode, tier chatModel.Tier, answer CachedAnswer) error
}

// CosineSimilarity returns 0 when either vector has no magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
