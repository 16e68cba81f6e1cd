package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/rag/llm"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{1, 0}, nil
}
func (m *mockEmbedder) Model() string  { return "mock" }
func (m *mockEmbedder) Dimension() int { return 2 }

type mockProvider struct {
	calls      int
	lastReq    llm.CompletionRequest
	OnGenerate func(ctx context.Context, req llm.CompletionRequest) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, req llm.CompletionRequest) (string, error) {
	m.calls++
	m.lastReq = req
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, req)
	}
	return "generated", nil
}

type mockCache struct {
	hit    *vectorDB.CachedAnswer
	stored chan vectorDB.CachedAnswer
}

func (m *mockCache) Lookup(ctx context.Context, v []float32, mode chatModel.Mode, tier chatModel.Tier) (vectorDB.CachedAnswer, bool, error) {
	if m.hit != nil {
		return *m.hit, true, nil
	}
	return vectorDB.CachedAnswer{}, false, nil
}

func (m *mockCache) Store(ctx context.Context, v []float32, mode chatModel.Mode, tier chatModel.Tier, a vectorDB.CachedAnswer) error {
	if m.stored != nil {
		m.stored <- a
	}
	return nil
}

type failingSearch struct {
	vectorDB.ChunkStore
}

func (failingSearch) Search(ctx context.Context, q []float32, topK int, threshold float64) ([]commonModels.RetrievalResult, error) {
	return nil, errorModel.StoreUnavailable("search", errors.New("connection refused"))
}

type docs map[string]commonModels.Document

func (d docs) Get(ctx context.Context, id string) (commonModels.Document, error) {
	return d[id], nil
}

func seededStore(t *testing.T) *memoryDB.Store {
	t.Helper()
	s := memoryDB.New(docs{"d1": {FileName: "pump-manual.pdf", Category: "manuals"}})
	require.NoError(t, s.ReplaceChunks(context.Background(), "d1", []commonModels.Chunk{
		{Index: 0, Content: "Bleed the pump before first start.", Embedding: []float32{1, 0}, CreatedAt: time.Now()},
		{Index: 1, Content: "Warranty covers two years.", Embedding: []float32{0, 1}, CreatedAt: time.Now()},
	}))
	return s
}

func opts() Options {
	return Options{TopK: 5, Threshold: 0.75, ContextBudget: 1000}
}

func TestAnswerWithContext(t *testing.T) {
	provider := &mockProvider{}
	c := New(&mockEmbedder{}, seededStore(t), provider, nil, opts())

	ans, err := c.Answer(context.Background(), chatModel.Question{
		Text: "How do I start the pump?", Mode: chatModel.ModeCees, Tier: chatModel.TierAdvanced,
	})
	require.NoError(t, err)

	assert.True(t, ans.ContextFound)
	assert.False(t, ans.RetrievalFailed)
	assert.Equal(t, "generated", ans.Text)
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "pump-manual.pdf", ans.Sources[0].FileName)
	assert.Equal(t, 0, ans.Sources[0].ChunkIndex)

	assert.Equal(t, chatModel.TierAdvanced, provider.lastReq.Tier)
	assert.Contains(t, provider.lastReq.System, "CeeS")
	assert.Contains(t, provider.lastReq.System, "Cite the passages")
	assert.Contains(t, provider.lastReq.Prompt, "[1] Source: pump-manual.pdf | Category: manuals")
	assert.Contains(t, provider.lastReq.Prompt, "Bleed the pump")
	assert.NotContains(t, provider.lastReq.Prompt, "Warranty")
}

func TestAnswerWithoutContext(t *testing.T) {
	provider := &mockProvider{}
	embedder := &mockEmbedder{OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
		return []float32{-1, -1}, nil
	}}
	c := New(embedder, seededStore(t), provider, nil, opts())

	ans, err := c.Answer(context.Background(), chatModel.Question{Text: "Who won the cup?", Mode: chatModel.ModeChris})
	require.NoError(t, err)

	assert.False(t, ans.ContextFound)
	assert.Empty(t, ans.Sources)
	assert.True(t, strings.HasPrefix(ans.Text, NoContextPrefix))
	assert.Contains(t, provider.lastReq.System, "ChriS")
	assert.Contains(t, provider.lastReq.System, "No internal documents matched")
	assert.NotContains(t, provider.lastReq.Prompt, "Context:")
}

func TestRetrievalFailuresDegrade(t *testing.T) {
	tests := []struct {
		name     string
		embedder *mockEmbedder
		store    vectorDB.ChunkStore
	}{
		{
			name: "embedding_failure",
			embedder: &mockEmbedder{OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
				return nil, errorModel.Transient("embed", errors.New("502"))
			}},
			store: seededStore(t),
		},
		{
			name:     "store_failure",
			embedder: &mockEmbedder{},
			store:    failingSearch{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{}
			c := New(tt.embedder, tt.store, provider, nil, opts())

			ans, err := c.Answer(context.Background(), chatModel.Question{Text: "pump?"})
			require.NoError(t, err)
			assert.True(t, ans.RetrievalFailed)
			assert.False(t, ans.ContextFound)
			assert.Empty(t, ans.Sources)
			assert.True(t, strings.HasPrefix(ans.Text, RetrievalFailedPrefix))
			assert.Contains(t, provider.lastReq.System, "could not be searched")
		})
	}
}

func TestCompletionFailureIsReturned(t *testing.T) {
	provider := &mockProvider{OnGenerate: func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		return "", errorModel.Transient("generate", errors.New("provider down"))
	}}
	c := New(&mockEmbedder{}, seededStore(t), provider, nil, opts())

	_, err := c.Answer(context.Background(), chatModel.Question{Text: "pump?"})
	assert.ErrorIs(t, err, errorModel.ErrTransient)
}

func TestEmptyQuestion(t *testing.T) {
	c := New(&mockEmbedder{}, seededStore(t), &mockProvider{}, nil, opts())
	_, err := c.Answer(context.Background(), chatModel.Question{Text: "   "})
	assert.ErrorIs(t, err, errorModel.ErrInvalidInput)
}

func TestCacheHitSkipsCompletion(t *testing.T) {
	provider := &mockProvider{}
	cache := &mockCache{hit: &vectorDB.CachedAnswer{
		Answer:  "cached answer",
		Sources: []chatModel.Source{{FileName: "pump-manual.pdf"}},
	}}
	c := New(&mockEmbedder{}, seededStore(t), provider, nil, opts()).WithCache(cache)

	ans, err := c.Answer(context.Background(), chatModel.Question{Text: "How do I start the pump?"})
	require.NoError(t, err)
	assert.True(t, ans.FromCache)
	assert.Equal(t, "cached answer", ans.Text)
	assert.Zero(t, provider.calls)
}

func TestOnlyGroundedAnswersAreCached(t *testing.T) {
	cache := &mockCache{stored: make(chan vectorDB.CachedAnswer, 1)}
	c := New(&mockEmbedder{}, seededStore(t), &mockProvider{}, nil, opts()).WithCache(cache)

	_, err := c.Answer(context.Background(), chatModel.Question{Text: "How do I start the pump?"})
	require.NoError(t, err)

	select {
	case stored := <-cache.stored:
		assert.Equal(t, "generated", stored.Answer)
		assert.Len(t, stored.Sources, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("grounded answer was not cached")
	}

	noMatch := &mockEmbedder{OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
		return []float32{-1, -1}, nil
	}}
	c = New(noMatch, seededStore(t), &mockProvider{}, nil, opts()).WithCache(cache)
	_, err = c.Answer(context.Background(), chatModel.Question{Text: "unrelated"})
	require.NoError(t, err)

	select {
	case <-cache.stored:
		t.Fatal("ungrounded answer was cached")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRetrieveHonoursLimit(t *testing.T) {
	c := New(&mockEmbedder{OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 1}, nil
	}}, seededStore(t), &mockProvider{}, nil, Options{TopK: 5, Threshold: 0.5})

	res, err := c.Retrieve(context.Background(), "mcp", "pump", 1)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestContextBlockBudget(t *testing.T) {
	results := []commonModels.RetrievalResult{
		{Chunk: commonModels.Chunk{Content: strings.Repeat("a", 30)}, FileName: "a.txt", Similarity: 0.9},
		{Chunk: commonModels.Chunk{Content: strings.Repeat("b", 30)}, FileName: "b.txt", Similarity: 0.8},
	}

	block, used := contextBlock(results, 40)
	assert.Len(t, used, 1)
	assert.Contains(t, block, "[1] Source: a.txt | Similarity: 0.90")
	assert.NotContains(t, block, "b.txt")

	// a single oversized passage is cut to the budget
	block, used = contextBlock(results[:1], 10)
	assert.Len(t, used, 1)
	assert.Contains(t, block, strings.Repeat("a", 10))
	assert.NotContains(t, block, strings.Repeat("a", 11))

	_, used = contextBlock(results, 0)
	assert.Len(t, used, 2)
}
