package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/metrics"
	"github.com/akolanti/DocAssist/internal/rag/embedding"
	"github.com/akolanti/DocAssist/internal/rag/llm"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
	"github.com/akolanti/DocAssist/internal/ratelimit"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

type Options struct {
	TopK          int
	Threshold     float64
	ContextBudget int
}

// Composer answers a question from the chunks retrieved for it.
type Composer struct {
	embedder embedding.Embedder
	chunks   vectorDB.ChunkStore
	provider llm.Provider
	cache    vectorDB.AnswerCache
	limiter  ratelimit.Limiter
	opts     Options
	logger   *logger_i.Logger
}

func New(embedder embedding.Embedder, chunks vectorDB.ChunkStore, provider llm.Provider, limiter ratelimit.Limiter, opts Options) *Composer {
	if limiter == nil {
		limiter = ratelimit.Unlimited()
	}
	return &Composer{
		embedder: embedder,
		chunks:   chunks,
		provider: provider,
		limiter:  limiter,
		opts:     opts,
		logger:   logger_i.NewLogger("Answer Composer"),
	}
}

// WithCache enables the semantic answer cache.
func (c *Composer) WithCache(cache vectorDB.AnswerCache) *Composer {
	c.cache = cache
	return c
}

// Retrieve embeds text and returns the matching chunks, using limit instead of
// the configured topK when it is positive.
func (c *Composer) Retrieve(ctx context.Context, caller, text string, limit int) ([]commonModels.RetrievalResult, error) {
	vector, err := c.embed(ctx, caller, text)
	if err != nil {
		return nil, err
	}
	return c.search(ctx, vector, limit)
}

// Answer never fails because retrieval failed: a question that could not be
// grounded still gets an answer, flagged RetrievalFailed. Errors are returned
// for an empty question, a cancelled context or a failed completion call.
func (c *Composer) Answer(ctx context.Context, q chatModel.Question) (chatModel.Answer, error) {
	log := c.logger.FromContext(ctx).With("mode", q.Mode, "tier", q.Tier)
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return chatModel.Answer{}, errorModel.InvalidInput("answer", fmt.Errorf("empty question"))
	}

	var (
		results         []commonModels.RetrievalResult
		retrievalFailed bool
	)
	vector, err := c.embed(ctx, q.Caller, text)
	if err == nil {
		if cached, ok := c.lookup(ctx, log, vector, q); ok {
			metrics.RetrievalOutcome("cache_hit")
			return cached, nil
		}
		results, err = c.search(ctx, vector, 0)
	}
	if err != nil {
		if ctx.Err() != nil {
			return chatModel.Answer{}, ctx.Err()
		}
		log.Error("retrieval failed, answering without internal context", "kind", errorModel.KindOf(err), "error", err)
		retrievalFailed = true
		results = nil
	}

	block, used := contextBlock(results, c.opts.ContextBudget)
	contextFound := len(used) > 0
	req := llm.CompletionRequest{
		System: systemPrompt(q.Mode, contextFound, retrievalFailed),
		Prompt: userPrompt(text, block, q.History),
		Tier:   q.Tier,
	}

	if err := c.limiter.Wait(ctx, callerKey(q.Caller)); err != nil {
		return chatModel.Answer{}, err
	}
	start := time.Now()
	reply, err := c.provider.Generate(ctx, req)
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		return chatModel.Answer{}, err
	}

	ans := chatModel.Answer{
		Text:            reply,
		Sources:         make([]chatModel.Source, 0, len(used)),
		ContextFound:    contextFound,
		RetrievalFailed: retrievalFailed,
	}
	for _, r := range used {
		ans.Sources = append(ans.Sources, chatModel.SourceFromResult(r))
	}

	switch {
	case retrievalFailed:
		ans.Text = RetrievalFailedPrefix + reply
		metrics.RetrievalOutcome("retrieval_failed")
	case !contextFound:
		ans.Text = NoContextPrefix + reply
		metrics.RetrievalOutcome("no_context")
	default:
		metrics.RetrievalOutcome("context")
		c.store(ctx, log, vector, q, ans)
	}
	log.Debug("answer composed", "sources", len(ans.Sources), "contextFound", contextFound)
	return ans, nil
}

func (c *Composer) embed(ctx context.Context, caller, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx, callerKey(caller)); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vector, err := c.embedder.GetEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := embedding.CheckVector("embed question", vector, c.embedder.Dimension()); err != nil {
		return nil, err
	}
	return vector, nil
}

func (c *Composer) search(ctx context.Context, vector []float32, limit int) ([]commonModels.RetrievalResult, error) {
	topK := c.opts.TopK
	if limit > 0 {
		topK = limit
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()
	return c.chunks.Search(ctx, vector, topK, c.opts.Threshold)
}

func (c *Composer) lookup(ctx context.Context, log *logger_i.Logger, vector []float32, q chatModel.Question) (chatModel.Answer, bool) {
	if c.cache == nil || len(q.History) > 0 {
		return chatModel.Answer{}, false
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	cached, found, err := c.cache.Lookup(ctx, vector, q.Mode, q.Tier)
	if err != nil {
		log.Warn("semantic cache lookup failed", "error", err)
		return chatModel.Answer{}, false
	}
	if !found {
		return chatModel.Answer{}, false
	}
	return chatModel.Answer{
		Text:         cached.Answer,
		Sources:      cached.Sources,
		ContextFound: true,
		FromCache:    true,
	}, true
}

// store saves grounded answers in the background; a cache failure never reaches the caller.
func (c *Composer) store(ctx context.Context, log *logger_i.Logger, vector []float32, q chatModel.Question, ans chatModel.Answer) {
	if c.cache == nil || len(q.History) > 0 {
		return
	}
	go func() {
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		err := c.cache.Store(storeCtx, vector, q.Mode, q.Tier, vectorDB.CachedAnswer{Answer: ans.Text, Sources: ans.Sources})
		if err != nil {
			log.Warn("failed to save answer to cache", "error", err)
		}
	}()
}

func callerKey(caller string) string {
	if caller == "" {
		return "anonymous"
	}
	return caller
}
