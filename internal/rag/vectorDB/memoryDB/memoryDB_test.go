package memoryDB

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/DocAssist/internal/data/documentStore"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type docs map[string]commonModels.Document

func (d docs) Get(ctx context.Context, id string) (commonModels.Document, error) {
	doc, ok := d[id]
	if !ok {
		return commonModels.Document{}, errors.New("missing")
	}
	return doc, nil
}

func chunk(doc string, idx int, created time.Time, v ...float32) commonModels.Chunk {
	return commonModels.Chunk{DocumentId: doc, Index: idx, Content: "c", Embedding: v, CreatedAt: created}
}

func TestSearchOrderingAndThreshold(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := New(docs{"a": {FileName: "a.pdf", Category: "manuals"}, "b": {FileName: "b.txt"}})

	require.NoError(t, s.ReplaceChunks(ctx, "a", []commonModels.Chunk{
		chunk("a", 0, now, 1, 0),
		chunk("a", 1, now, 0, 1),
	}))
	require.NoError(t, s.ReplaceChunks(ctx, "b", []commonModels.Chunk{
		chunk("b", 0, now.Add(time.Minute), 1, 0),
		chunk("b", 1, now, 0.8, 0.6),
	}))

	res, err := s.Search(ctx, []float32{1, 0}, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, res, 3)

	// equal scores: newer chunk first
	assert.Equal(t, "b", res[0].Chunk.DocumentId)
	assert.Equal(t, "a", res[1].Chunk.DocumentId)
	assert.Equal(t, "a.pdf", res[1].FileName)
	assert.Equal(t, "manuals", res[1].Category)
	assert.InDelta(t, 0.8, res[2].Similarity, 1e-6)
	for _, r := range res {
		assert.GreaterOrEqual(t, r.Similarity, 0.5)
		assert.Nil(t, r.Chunk.Embedding)
	}

	top, err := s.Search(ctx, []float32{1, 0}, 2, 0.5)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestSearchNothingAboveThreshold(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	require.NoError(t, s.ReplaceChunks(ctx, "a", []commonModels.Chunk{chunk("a", 0, time.Now(), 0, 1)}))

	res, err := s.Search(ctx, []float32{1, 0}, 5, 0.75)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestReplaceLeavesOnlyNewChunks(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	now := time.Now()

	require.NoError(t, s.ReplaceChunks(ctx, "a", []commonModels.Chunk{
		chunk("a", 0, now, 1, 0), chunk("a", 1, now, 1, 0), chunk("a", 2, now, 1, 0),
	}))
	require.NoError(t, s.ReplaceChunks(ctx, "a", []commonModels.Chunk{chunk("a", 0, now, 0, 1)}))

	n, err := s.CountChunks(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := s.Search(ctx, []float32{1, 0}, 10, 0.5)
	require.NoError(t, err)
	assert.Empty(t, res)

	require.NoError(t, s.DeleteDocument(ctx, "a"))
	n, _ = s.CountChunks(ctx, "a")
	assert.Zero(t, n)
}

func TestReplaceAfterDocumentDeletedLeavesNoChunks(t *testing.T) {
	ctx := context.Background()
	repo := documentStore.NewMemory()
	s := New(repo)
	repo.OnDelete(s)

	doc, err := repo.Create(ctx, commonModels.Document{FileName: "a.txt"})
	require.NoError(t, err)
	_, err = repo.BeginProcessing(ctx, doc.Id)
	require.NoError(t, err)

	// deleted while a worker is still chunking it
	require.NoError(t, repo.Delete(ctx, doc.Id))

	err = s.ReplaceChunks(ctx, doc.Id, []commonModels.Chunk{chunk(doc.Id, 0, time.Now(), 1, 0)})
	assert.ErrorIs(t, err, errorModel.ErrNotFound)

	n, err := s.CountChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.Zero(t, n)
	res, err := s.Search(ctx, []float32{1, 0}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, res)
}
