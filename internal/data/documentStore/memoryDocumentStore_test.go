package documentStore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deleted struct{ ids []string }

func (d *deleted) DeleteDocument(ctx context.Context, id string) error {
	d.ids = append(d.ids, id)
	return nil
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	doc, err := repo.Create(ctx, commonModels.Document{FileName: "manual.pdf"})
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusPending, doc.Status)
	assert.NotEmpty(t, doc.Id)

	doc, err = repo.BeginProcessing(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessing, doc.Status)

	doc, err = repo.MarkFailed(ctx, doc.Id, "ExtractionError: corrupt file")
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusFailed, doc.Status)
	require.NotNil(t, doc.LastError)
	assert.False(t, doc.Processed())

	// reprocess clears the error
	doc, err = repo.BeginProcessing(ctx, doc.Id)
	require.NoError(t, err)
	assert.Nil(t, doc.LastError)

	at := time.Now()
	doc, err = repo.MarkProcessed(ctx, doc.Id, 4, at)
	require.NoError(t, err)
	assert.True(t, doc.Processed())
	assert.Equal(t, 4, doc.ChunkCount)
	assert.Nil(t, doc.LastError)
	require.NotNil(t, doc.ProcessedAt)
}

func TestBeginProcessingIsExclusive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	doc, err := repo.Create(ctx, commonModels.Document{FileName: "a.txt"})
	require.NoError(t, err)

	var wins, rejected atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.BeginProcessing(ctx, doc.Id)
			switch {
			case err == nil:
				wins.Add(1)
			case assert.ErrorIs(t, err, errorModel.ErrAlreadyProcessing):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(15), rejected.Load())
}

func TestBeginProcessingUnknownDocument(t *testing.T) {
	_, err := NewMemory().BeginProcessing(context.Background(), "nope")
	assert.ErrorIs(t, err, errorModel.ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	a, _ := repo.Create(ctx, commonModels.Document{FileName: "a.txt", UploadedAt: time.Now().Add(-time.Hour)})
	b, _ := repo.Create(ctx, commonModels.Document{FileName: "b.txt"})
	_, err := repo.MarkFailed(ctx, a.Id, "UpstreamAuthError: bad key")
	require.NoError(t, err)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.Id, all[0].Id)

	failed := commonModels.StatusFailed
	only, err := repo.List(ctx, &failed)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, a.Id, only[0].Id)
}

func TestResetStaleAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	chunks := &deleted{}
	repo.OnDelete(chunks)

	doc, _ := repo.Create(ctx, commonModels.Document{FileName: "a.txt"})
	_, err := repo.BeginProcessing(ctx, doc.Id)
	require.NoError(t, err)

	ids, err := repo.ResetStale(ctx, time.Now().Add(time.Minute), "interrupted")
	require.NoError(t, err)
	assert.Equal(t, []string{doc.Id}, ids)

	got, _ := repo.Get(ctx, doc.Id)
	assert.Equal(t, commonModels.StatusFailed, got.Status)

	require.NoError(t, repo.Delete(ctx, doc.Id))
	assert.Equal(t, []string{doc.Id}, chunks.ids)
	_, err = repo.Get(ctx, doc.Id)
	assert.ErrorIs(t, err, errorModel.ErrNotFound)
}
