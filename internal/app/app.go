// Package app builds the ingestion and answering pipeline from configuration.
// The API server and docctl share it so both run the same components.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/customHttpClient"
	"github.com/akolanti/DocAssist/internal/data/documentStore"
	"github.com/akolanti/DocAssist/internal/data/objectStore"
	"github.com/akolanti/DocAssist/internal/data/postgres"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/rag/answer"
	"github.com/akolanti/DocAssist/internal/rag/chunker"
	"github.com/akolanti/DocAssist/internal/rag/embedding"
	"github.com/akolanti/DocAssist/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocAssist/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocAssist/internal/rag/extract"
	"github.com/akolanti/DocAssist/internal/rag/ingest"
	"github.com/akolanti/DocAssist/internal/rag/llm"
	"github.com/akolanti/DocAssist/internal/rag/llm/gemini"
	"github.com/akolanti/DocAssist/internal/rag/llm/openaiLLM"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB/pgvectorDB"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocAssist/internal/ratelimit"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config       *config.Config
	Documents    documentStore.Repository
	Objects      objectStore.Store
	Chunks       vectorDB.ChunkStore
	Embedder     embedding.Embedder
	LLM          llm.Provider
	Orchestrator *ingest.Orchestrator
	Composer     *answer.Composer

	pool    *pgxpool.Pool
	cache   *qdrantDB.Cache
	closers []func()
}

// Options turn off parts a caller does not need.
type Options struct {
	// SkipMigrate leaves the schema alone on start-up.
	SkipMigrate bool
	// NoCache disables the semantic answer cache even when configured.
	NoCache bool
}

// Build connects every store and upstream client named by cfg. On error,
// anything already opened is closed.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger_i.NewLogger("app")
	a := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	if err := a.openStores(ctx, log, opts); err != nil {
		return nil, err
	}

	var err error

	a.Objects, err = objectStore.NewFileStore(cfg.Storage.Root)
	if err != nil {
		return nil, err
	}

	httpClient := customHttpClient.New(cfg.LLM.CallTimeout)
	a.Embedder, err = newEmbedder(ctx, cfg.Embedding, httpClient)
	if err != nil {
		return nil, err
	}
	a.LLM, err = newProvider(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}

	ch, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}

	a.Orchestrator = ingest.New(ingest.Deps{
		Documents: a.Documents,
		Objects:   a.Objects,
		Extractor: extract.New(),
		Chunker:   ch,
		Embedder:  a.Embedder,
		Chunks:    a.Chunks,
		Limiter:   ratelimit.New(cfg.Embedding.RequestsPerSec, cfg.Embedding.Burst),
	}, ingest.RetryPolicy{
		MaxAttempts:    cfg.Embedding.MaxAttempts,
		InitialBackoff: cfg.Embedding.InitialBackoff,
		MaxBackoff:     cfg.Embedding.MaxBackoff,
	}, cfg.Embedding.Concurrency)

	a.Composer = answer.New(a.Embedder, a.Chunks, a.LLM,
		ratelimit.New(config.CallerRequestsPerSecond, config.CallerRequestBurst),
		answer.Options{
			TopK:          cfg.Retrieval.TopK,
			Threshold:     cfg.Retrieval.Threshold,
			ContextBudget: cfg.Retrieval.ContextBudget,
		})

	if cfg.Retrieval.CacheEnabled && !opts.NoCache {
		a.cache, err = qdrantDB.Open(ctx, cfg.Qdrant, cfg.Embedding.Dimension)
		if err != nil {
			// the cache only saves completions; run without it
			log.Warn("semantic cache unavailable, continuing without it", "error", err)
			a.cache = nil
		}
		if a.cache != nil {
			a.Composer.WithCache(a.cache)
			a.closers = append(a.closers, func() { _ = a.cache.Close() })
		}
	}

	log.Info("pipeline ready",
		"chunkStore", cfg.Database.ChunkBackend,
		"embedding", a.Embedder.Model(),
		"dimension", a.Embedder.Dimension(),
		"llm", cfg.LLM.Provider,
		"semanticCache", a.cache != nil)
	ok = true
	return a, nil
}

func (a *App) openStores(ctx context.Context, log *logger_i.Logger, opts Options) error {
	cfg := a.Config
	if cfg.Database.ChunkBackend == "memory" {
		docs := documentStore.NewMemory()
		chunks := memoryDB.New(docs)
		docs.OnDelete(chunks)
		a.Documents, a.Chunks = docs, chunks
		log.Warn("using in-memory document and chunk stores, nothing survives a restart")
		return nil
	}

	pool, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	a.pool = pool
	a.closers = append(a.closers, pool.Close)

	if !opts.SkipMigrate {
		if err := postgres.Migrate(ctx, pool, cfg.Embedding.Dimension); err != nil {
			return err
		}
	}
	a.Documents = documentStore.NewPostgres(pool)
	a.Chunks = pgvectorDB.New(pool, cfg.Embedding.Dimension)
	return nil
}

// Migrate applies the schema; it is a no-op on the memory backend.
func (a *App) Migrate(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}
	return postgres.Migrate(ctx, a.pool, a.Config.Embedding.Dimension)
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig, httpClient *http.Client) (embedding.Embedder, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, errorModel.Configuration("embedding", fmt.Errorf("no API key for provider %q", cfg.Provider))
	}
	guard := embedding.NewTokenGuard(cfg.MaxTokens)
	switch cfg.Provider {
	case "google":
		return googleEmbedding.New(ctx, key, cfg.Model, cfg.Dimension, guard, httpClient)
	case "openai":
		return openaiEmbedding.New(key, cfg.Model, cfg.Dimension, guard, httpClient)
	}
	return nil, errorModel.Configuration("embedding", fmt.Errorf("unknown provider %q", cfg.Provider))
}

func newProvider(ctx context.Context, cfg *config.Config, httpClient *http.Client) (llm.Provider, error) {
	tiers := llm.TiersFromConfig(cfg.LLM)
	switch cfg.LLM.Provider {
	case "gemini":
		if cfg.Embedding.GoogleKey == "" {
			return nil, errorModel.Configuration("llm", errors.New("GOOGLE_API_KEY is not set"))
		}
		return gemini.New(ctx, cfg.Embedding.GoogleKey, tiers, cfg.LLM.Temperature, httpClient)
	case "openai":
		if cfg.Embedding.OpenAIKey == "" {
			return nil, errorModel.Configuration("llm", errors.New("OPENAI_API_KEY is not set"))
		}
		return openaiLLM.New(cfg.Embedding.OpenAIKey, tiers, cfg.LLM.Temperature, httpClient)
	}
	return nil, errorModel.Configuration("llm", fmt.Errorf("unknown provider %q", cfg.LLM.Provider))
}
