package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocAssist/internal/data/documentStore"
	"github.com/akolanti/DocAssist/internal/data/objectStore"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/rag/chunker"
	"github.com/akolanti/DocAssist/internal/rag/extract"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockEmbedder struct {
	mu    sync.Mutex
	calls map[string]int
	total int
	onGet func(text string, call int) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[text]++
	m.total++
	call := m.calls[text]
	m.mu.Unlock()

	if m.onGet != nil {
		return m.onGet(text, call)
	}
	return []float32{1, 0}, nil
}

func (m *mockEmbedder) Model() string  { return "mock" }
func (m *mockEmbedder) Dimension() int { return 2 }

func (m *mockEmbedder) callsFor(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[text]
}

func (m *mockEmbedder) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

type failingChunkStore struct {
	vectorDB.ChunkStore
	err error
}

func (f *failingChunkStore) ReplaceChunks(ctx context.Context, id string, chunks []commonModels.Chunk) error {
	return f.err
}

// --- fixture ---

type fixture struct {
	docs     *documentStore.MemoryStore
	objects  objectStore.Store
	chunks   *memoryDB.Store
	embedder *mockEmbedder
	orch     *Orchestrator
}

func newFixture(t *testing.T, size, overlap int) *fixture {
	t.Helper()
	docs := documentStore.NewMemory()
	chunks := memoryDB.New(docs)
	docs.OnDelete(chunks)
	objects, err := objectStore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ch, err := chunker.New(size, overlap)
	require.NoError(t, err)

	f := &fixture{docs: docs, objects: objects, chunks: chunks, embedder: &mockEmbedder{}}
	f.orch = New(Deps{
		Documents: docs,
		Objects:   objects,
		Extractor: extract.New(),
		Chunker:   ch,
		Embedder:  f.embedder,
		Chunks:    chunks,
	}, RetryPolicy{MaxAttempts: 4, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}, 2)
	return f
}

func (f *fixture) upload(t *testing.T, fileName, content string) commonModels.Document {
	t.Helper()
	ctx := context.Background()
	key := objectStore.SafeName(fileName)
	require.NoError(t, f.objects.Put(ctx, key, []byte(content), commonModels.ContentTypeFor(fileName)))
	doc, err := f.docs.Create(ctx, commonModels.Document{
		FileName:    fileName,
		SafeName:    key,
		StoragePath: key,
		Size:        int64(len(content)),
		ContentType: commonModels.ContentTypeFor(fileName),
		Category:    "manuals",
	})
	require.NoError(t, err)
	return doc
}

// --- tests ---

func TestProcessChunksDocument(t *testing.T) {
	f := newFixture(t, 10, 2)
	doc := f.upload(t, "letters.txt", "AAAA BBBB CCCC DDDD")

	got, err := f.orch.Process(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessed, got.Status)
	assert.Equal(t, 3, got.ChunkCount)
	assert.Nil(t, got.LastError)
	require.NotNil(t, got.ProcessedAt)

	res, err := f.chunks.Search(context.Background(), []float32{1, 0}, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, res, 3)

	ranges := map[int][2]int{}
	for _, r := range res {
		ranges[r.Chunk.Index] = [2]int{r.Chunk.Start, r.Chunk.End}
		assert.Equal(t, "letters.txt", r.FileName)
	}
	assert.Equal(t, map[int][2]int{0: {0, 10}, 1: {8, 18}, 2: {16, 19}}, ranges)
	assert.Equal(t, 3, f.embedder.totalCalls())
}

func TestProcessEmptyDocument(t *testing.T) {
	f := newFixture(t, 10, 2)
	doc := f.upload(t, "empty.txt", "")

	got, err := f.orch.Process(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessed, got.Status)
	assert.Equal(t, 0, got.ChunkCount)
	assert.Zero(t, f.embedder.totalCalls())
}

func TestProcessAbsorbsRateLimits(t *testing.T) {
	f := newFixture(t, 100, 10)
	doc := f.upload(t, "short.txt", "pump maintenance schedule")
	f.embedder.onGet = func(text string, call int) ([]float32, error) {
		if call <= 2 {
			return nil, errorModel.RateLimited("embed", errors.New("429"))
		}
		return []float32{0, 1}, nil
	}

	got, err := f.orch.Process(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessed, got.Status)
	assert.Equal(t, 3, f.embedder.callsFor("pump maintenance schedule"))
}

func TestProcessGivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t, 100, 10)
	doc := f.upload(t, "short.txt", "valve")
	f.embedder.onGet = func(text string, call int) ([]float32, error) {
		return nil, errorModel.Transient("embed", errors.New("503"))
	}

	got, err := f.orch.Process(context.Background(), doc.Id)
	assert.ErrorIs(t, err, errorModel.ErrTransient)
	assert.Equal(t, commonModels.StatusFailed, got.Status)
	require.NotNil(t, got.LastError)
	assert.True(t, strings.HasPrefix(*got.LastError, "UpstreamTransient"), *got.LastError)
	assert.Equal(t, 4, f.embedder.callsFor("valve"))
}

func TestProcessAuthErrorIsNotRetried(t *testing.T) {
	f := newFixture(t, 100, 10)
	doc := f.upload(t, "short.txt", "valve")
	f.embedder.onGet = func(text string, call int) ([]float32, error) {
		return nil, errorModel.Auth("embed", errors.New("401"))
	}

	got, err := f.orch.Process(context.Background(), doc.Id)
	assert.ErrorIs(t, err, errorModel.ErrAuthentication)
	assert.Equal(t, commonModels.StatusFailed, got.Status)
	assert.Equal(t, 1, f.embedder.callsFor("valve"))
}

func TestProcessExtractionFailure(t *testing.T) {
	f := newFixture(t, 10, 2)
	doc := f.upload(t, "scan.png", "\x89PNG not really")

	got, err := f.orch.Process(context.Background(), doc.Id)
	assert.ErrorIs(t, err, errorModel.ErrExtraction)
	assert.Equal(t, commonModels.StatusFailed, got.Status)
	assert.False(t, got.Processed())
	require.NotNil(t, got.LastError)
	assert.True(t, strings.HasPrefix(*got.LastError, "ExtractionError"), *got.LastError)
	assert.Zero(t, f.embedder.totalCalls())
}

func TestProcessStoreFailure(t *testing.T) {
	f := newFixture(t, 10, 2)
	f.orch.chunks = &failingChunkStore{ChunkStore: f.chunks, err: errorModel.StoreUnavailable("replace", errors.New("conn reset"))}
	doc := f.upload(t, "letters.txt", "AAAA BBBB CCCC DDDD")

	got, err := f.orch.Process(context.Background(), doc.Id)
	assert.ErrorIs(t, err, errorModel.ErrStoreUnavailable)
	assert.Equal(t, commonModels.StatusFailed, got.Status)
	require.NotNil(t, got.LastError)
	assert.True(t, strings.HasPrefix(*got.LastError, "StoreUnavailable"), *got.LastError)

	// still eligible for reprocess
	f.orch.chunks = f.chunks
	got, err = f.orch.Process(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessed, got.Status)
}

func TestReprocessReplacesChunks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, 2)
	doc := f.upload(t, "letters.txt", "AAAA BBBB CCCC DDDD")

	_, err := f.orch.Process(ctx, doc.Id)
	require.NoError(t, err)

	require.NoError(t, f.objects.Put(ctx, doc.StoragePath, []byte("short"), "text/plain"))
	got, err := f.orch.Process(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ChunkCount)

	n, err := f.chunks.CountChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConcurrentProcessRunsOnce(t *testing.T) {
	f := newFixture(t, 100, 10)
	doc := f.upload(t, "short.txt", "compressor")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.embedder.onGet = func(text string, call int) ([]float32, error) {
		once.Do(func() { close(started) })
		<-release
		return []float32{1, 1}, nil
	}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = f.orch.Process(context.Background(), doc.Id)
	}()

	<-started
	_, err := f.orch.Process(context.Background(), doc.Id)
	assert.ErrorIs(t, err, errorModel.ErrAlreadyProcessing)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	got, err := f.docs.Get(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessed, got.Status)
	assert.Equal(t, 1, f.embedder.totalCalls())
}

func TestOverlongChunkIsTruncatedForEmbedding(t *testing.T) {
	f := newFixture(t, 100, 10)
	doc := f.upload(t, "long.txt", "abcdefghijklmnop")
	f.embedder.onGet = func(text string, call int) ([]float32, error) {
		if len(text) > 5 {
			return nil, errorModel.InvalidInput("embed", errors.New("too many tokens"))
		}
		return []float32{1, 0}, nil
	}

	got, err := f.orch.Process(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ChunkCount)
	assert.Equal(t, 1, f.embedder.callsFor("abcd"))

	res, err := f.chunks.Search(context.Background(), []float32{1, 0}, 1, 0.5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "abcdefghijklmnop", res[0].Chunk.Content)
}

func TestProcessUnknownDocument(t *testing.T) {
	f := newFixture(t, 10, 2)
	_, err := f.orch.Process(context.Background(), "missing")
	assert.ErrorIs(t, err, errorModel.ErrNotFound)
}
