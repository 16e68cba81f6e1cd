package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/metrics"
	"github.com/akolanti/DocAssist/internal/rag/chunker"
	"github.com/akolanti/DocAssist/internal/rag/embedding"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxTruncations bounds how often an over-long chunk is halved before giving up.
const maxTruncations = 3

// embedSpans embeds every span with at most o.concurrency calls in flight. The
// first failure cancels the rest: a document is stored whole or not at all.
func (o *Orchestrator) embedSpans(ctx context.Context, log *logger_i.Logger, documentID string, spans []chunker.Span) ([]commonModels.Chunk, error) {
	chunks := make([]commonModels.Chunk, len(spans))
	if len(spans) == 0 {
		return chunks, nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, span := range spans {
		g.Go(func() error {
			vector, err := o.embedChunk(gctx, log, span)
			if err != nil {
				return err
			}
			chunks[i] = commonModels.Chunk{
				Id:         uuid.NewString(),
				DocumentId: documentID,
				Index:      span.Index,
				Content:    span.Text,
				Embedding:  vector,
				Start:      span.Start,
				End:        span.End,
				CreatedAt:  o.now().UTC(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug("chunks embedded", "count", len(chunks), "elapsed", time.Since(start))
	return chunks, nil
}

// embedChunk retries retryable failures with backoff. A chunk the embedder
// rejects as too long is embedded from a truncated prefix; the stored content
// stays whole.
func (o *Orchestrator) embedChunk(ctx context.Context, log *logger_i.Logger, span chunker.Span) ([]float32, error) {
	text := span.Text
	for truncations := 0; ; truncations++ {
		vector, err := o.embedWithRetry(ctx, log, text)
		if err == nil {
			return vector, nil
		}
		runes := []rune(text)
		if !errors.Is(err, errorModel.ErrInvalidInput) || truncations == maxTruncations || len(runes) < 2 {
			return nil, err
		}
		text = string(runes[:len(runes)/2])
		log.Warn("chunk too long for embedding, truncating", "chunkIndex", span.Index, "runes", len(runes)/2)
	}
}

func (o *Orchestrator) embedWithRetry(ctx context.Context, log *logger_i.Logger, text string) ([]float32, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.retry.InitialBackoff
	if o.retry.MaxBackoff > 0 {
		b.MaxInterval = o.retry.MaxBackoff
	}
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(o.retry.MaxAttempts-1)), ctx)

	operation := func() ([]float32, error) {
		if err := o.limiter.Wait(ctx, LimiterKey); err != nil {
			return nil, backoff.Permanent(err)
		}
		callStart := time.Now()
		vector, err := o.embedder.GetEmbedding(ctx, text)
		metrics.CaptureExecutionMetrics("embedding", time.Since(callStart))
		if err != nil {
			if errorModel.IsRetryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		if err := embedding.CheckVector("embed chunk", vector, o.embedder.Dimension()); err != nil {
			if errorModel.IsRetryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return vector, nil
	}
	notify := func(err error, wait time.Duration) {
		metrics.EmbeddingRetry(string(errorModel.KindOf(err)))
		log.Warn("embedding call failed, backing off", "error", err, "wait", wait)
	}

	return backoff.RetryNotifyWithData(operation, policy, notify)
}
