package pgvectorDB

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/akolanti/DocAssist/internal/data/postgres"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/rag/embedding"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var logger *logger_i.Logger

// Store keeps chunks in the document_chunks table and searches them through
// match_document_chunks.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
}

func New(pool *pgxpool.Pool, dimension int) *Store {
	logger = logger_i.NewLogger("pgvectorDB")
	return &Store{pool: pool, dimension: dimension}
}

var _ vectorDB.ChunkStore = (*Store)(nil)

const insertChunk = `
INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding, start_offset, end_offset, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// ReplaceChunks deletes and reinserts a document's chunks in one transaction,
// serialized per document by an advisory lock.
func (s *Store) ReplaceChunks(ctx context.Context, documentID string, chunks []commonModels.Chunk) error {
	for _, c := range chunks {
		if err := embedding.CheckVector("replace chunks", c.Embedding, s.dimension); err != nil {
			return err
		}
	}

	err := postgres.Transact(ctx, s.pool, func(tx pgx.Tx) error {
		if err := postgres.AdvisoryXactLock(ctx, tx, postgres.LockID("document_chunks", documentID)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM document_chunks WHERE document_id = $1", documentID); err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}

		now := time.Now().UTC()
		batch := &pgx.Batch{}
		for _, c := range chunks {
			id := c.Id
			if id == "" {
				id = uuid.NewString()
			}
			created := c.CreatedAt
			if created.IsZero() {
				created = now
			}
			batch.Queue(insertChunk, id, documentID, c.Index, c.Content,
				pgvector.NewVector(c.Embedding), c.Start, c.End, created)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return errorModel.New(errorModel.KindNotFound, "replace chunks", fmt.Errorf("document %s: %w", documentID, err))
		}
		return postgres.Unavailable("replace chunks", err)
	}
	logger.Debug("chunks replaced", "documentId", documentID, "count", len(chunks))
	return nil
}

const searchChunks = `
SELECT id, document_id, chunk_index, content, start_offset, end_offset, created_at,
       filename, category, department, similarity
FROM match_document_chunks($1, $2, $3)`

// HNSW returns at most hnsw.ef_search candidates per scan, so the setting is
// raised to cover topK for the duration of the query.
const (
	defaultEfSearch = 40
	maxEfSearch     = 1000
)

func efSearch(topK int) int {
	return min(max(topK, defaultEfSearch), maxEfSearch)
}

func (s *Store) Search(ctx context.Context, query []float32, topK int, threshold float64) ([]commonModels.RetrievalResult, error) {
	results := []commonModels.RetrievalResult{}
	if topK <= 0 {
		return results, nil
	}
	if err := embedding.CheckVector("search", query, s.dimension); err != nil {
		return nil, err
	}

	err := postgres.Transact(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT set_config('hnsw.ef_search', $1, true)", strconv.Itoa(efSearch(topK))); err != nil {
			return fmt.Errorf("set ef_search: %w", err)
		}
		rows, err := tx.Query(ctx, searchChunks, pgvector.NewVector(query), threshold, topK)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var r commonModels.RetrievalResult
			if err := rows.Scan(
				&r.Chunk.Id, &r.Chunk.DocumentId, &r.Chunk.Index, &r.Chunk.Content,
				&r.Chunk.Start, &r.Chunk.End, &r.Chunk.CreatedAt,
				&r.FileName, &r.Category, &r.Department, &r.Similarity,
			); err != nil {
				return err
			}
			results = append(results, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, postgres.Unavailable("search", err)
	}
	return results, nil
}

func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM document_chunks WHERE document_id = $1", documentID)
	return postgres.Unavailable("delete chunks", err)
}

func (s *Store) CountChunks(ctx context.Context, documentID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM document_chunks WHERE document_id = $1", documentID).Scan(&n)
	if err != nil {
		return 0, postgres.Unavailable("count chunks", err)
	}
	return n, nil
}
