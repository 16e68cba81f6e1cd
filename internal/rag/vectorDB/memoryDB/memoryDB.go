package memoryDB

import (
	"context"
	"slices"
	"sync"

	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
)

// DocumentSource resolves the citation fields of a chunk's parent document.
type DocumentSource interface {
	Get(ctx context.Context, id string) (commonModels.Document, error)
}

// Store is an exact, brute-force chunk store held in memory.
type Store struct {
	mu     sync.RWMutex
	chunks map[string][]commonModels.Chunk
	docs   DocumentSource
}

func New(docs DocumentSource) *Store {
	return &Store{
		chunks: make(map[string][]commonModels.Chunk),
		docs:   docs,
	}
}

var _ vectorDB.ChunkStore = (*Store)(nil)

func (s *Store) ReplaceChunks(ctx context.Context, documentID string, chunks []commonModels.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := make([]commonModels.Chunk, len(chunks))
	for i, c := range chunks {
		c.DocumentId = documentID
		c.Embedding = slices.Clone(c.Embedding)
		copied[i] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// the parent must still exist; a delete cascades through DeleteDocument after it
	if s.docs != nil {
		if _, err := s.docs.Get(ctx, documentID); err != nil {
			return err
		}
	}
	if len(copied) == 0 {
		delete(s.chunks, documentID)
		return nil
	}
	s.chunks[documentID] = copied
	return nil
}

func (s *Store) Search(ctx context.Context, query []float32, topK int, threshold float64) ([]commonModels.RetrievalResult, error) {
	if topK <= 0 {
		return []commonModels.RetrievalResult{}, nil
	}

	s.mu.RLock()
	var results []commonModels.RetrievalResult
	for _, chunks := range s.chunks {
		for _, c := range chunks {
			score := vectorDB.CosineSimilarity(query, c.Embedding)
			if score < threshold {
				continue
			}
			results = append(results, commonModels.RetrievalResult{Chunk: c, Similarity: score})
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(results, func(a, b commonModels.RetrievalResult) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return b.Chunk.CreatedAt.Compare(a.Chunk.CreatedAt)
	})
	if len(results) > topK {
		results = results[:topK]
	}

	for i := range results {
		results[i].Chunk.Embedding = nil
		if s.docs == nil {
			continue
		}
		doc, err := s.docs.Get(ctx, results[i].Chunk.DocumentId)
		if err != nil {
			continue
		}
		results[i].FileName = doc.FileName
		results[i].Category = doc.Category
		results[i].Department = doc.Department
	}
	if results == nil {
		results = []commonModels.RetrievalResult{}
	}
	return results, nil
}

func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

func (s *Store) CountChunks(ctx context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID]), nil
}
