package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocAssist/internal/data/documentStore"
	"github.com/akolanti/DocAssist/internal/data/objectStore"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/metrics"
	"github.com/akolanti/DocAssist/internal/rag/chunker"
	"github.com/akolanti/DocAssist/internal/rag/embedding"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
	"github.com/akolanti/DocAssist/internal/ratelimit"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

// LimiterKey is the rate limiter bucket shared by all ingestion embedding calls.
const LimiterKey = "ingest"

// TextExtractor turns raw file bytes into normalized text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, contentType, fileName string) (string, error)
}

type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Orchestrator drives one document through extract, chunk, embed and store,
// and is the only writer of the document's processing fields.
type Orchestrator struct {
	docs        documentStore.Repository
	objects     objectStore.Store
	extractor   TextExtractor
	chunker     *chunker.Chunker
	embedder    embedding.Embedder
	chunks      vectorDB.ChunkStore
	limiter     ratelimit.Limiter
	retry       RetryPolicy
	concurrency int
	now         func() time.Time
	logger      *logger_i.Logger
}

type Deps struct {
	Documents documentStore.Repository
	Objects   objectStore.Store
	Extractor TextExtractor
	Chunker   *chunker.Chunker
	Embedder  embedding.Embedder
	Chunks    vectorDB.ChunkStore
	Limiter   ratelimit.Limiter
}

func New(d Deps, retry RetryPolicy, concurrency int) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.Unlimited()
	}
	return &Orchestrator{
		docs:        d.Documents,
		objects:     d.Objects,
		extractor:   d.Extractor,
		chunker:     d.Chunker,
		embedder:    d.Embedder,
		chunks:      d.Chunks,
		limiter:     d.Limiter,
		retry:       retry,
		concurrency: concurrency,
		now:         time.Now,
		logger:      logger_i.NewLogger("Document Ingestion"),
	}
}

// Process runs the full pipeline for documentID. It is safe to call concurrently;
// a second run for a document that is already PROCESSING is rejected with
// ErrAlreadyProcessing and changes nothing. Every other failure is recorded on
// the document before it is returned.
func (o *Orchestrator) Process(ctx context.Context, documentID string) (commonModels.Document, error) {
	log := o.logger.FromContext(ctx).With("documentId", documentID)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	doc, err := o.docs.BeginProcessing(ctx, documentID)
	if err != nil {
		if errors.Is(err, errorModel.ErrAlreadyProcessing) {
			log.Warn("reprocess rejected, document is already processing")
			metrics.IngestionOutcome("rejected", string(errorModel.KindAlreadyRunning))
		}
		return commonModels.Document{}, err
	}
	log = log.With("filename", doc.FileName)
	log.Info("processing document")

	chunks, err := o.run(ctx, log, doc)
	if err != nil {
		return o.fail(ctx, log, doc, err)
	}

	// status writes must land even if the caller gave up while we were storing
	done, err := o.docs.MarkProcessed(context.WithoutCancel(ctx), doc.Id, len(chunks), o.now())
	if err != nil {
		log.Error("could not mark document processed", "error", err)
		return doc, err
	}
	metrics.IngestionOutcome("processed", "")
	log.Info("document processed", "chunks", len(chunks), "elapsed", time.Since(start))
	return done, nil
}

func (o *Orchestrator) run(ctx context.Context, log *logger_i.Logger, doc commonModels.Document) ([]commonModels.Chunk, error) {
	data, err := o.objects.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", doc.StoragePath, err)
	}

	text, err := o.extractor.Extract(ctx, data, doc.ContentType, doc.FileName)
	if err != nil {
		return nil, err
	}
	log.Debug("text extracted", "bytes", len(data), "runes", len([]rune(text)))

	spans := o.chunker.Split(text)
	chunks, err := o.embedSpans(ctx, log, doc.Id, spans)
	if err != nil {
		return nil, err
	}

	// an empty document still goes through replace so a reprocess clears old chunks
	if err := o.chunks.ReplaceChunks(ctx, doc.Id, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (o *Orchestrator) fail(ctx context.Context, log *logger_i.Logger, doc commonModels.Document, cause error) (commonModels.Document, error) {
	kind := errorModel.KindOf(cause)
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		kind = errorModel.KindTransient
		cause = errorModel.Transient("ingest", cause)
	}
	log.Error("document ingestion failed", "kind", kind, "error", cause)
	metrics.IngestionOutcome("failed", string(kind))

	failed, err := o.docs.MarkFailed(context.WithoutCancel(ctx), doc.Id, errorModel.Describe(cause))
	if err != nil {
		log.Error("could not record ingestion failure", "error", err)
		return doc, errors.Join(cause, err)
	}
	return failed, cause
}
