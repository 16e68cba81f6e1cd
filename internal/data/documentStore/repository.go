package documentStore

import (
	"context"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/commonModels"
)

// Repository owns the documents table. Only the ingestion orchestrator moves a
// document through its processing states.
type Repository interface {
	Create(ctx context.Context, doc commonModels.Document) (commonModels.Document, error)
	Get(ctx context.Context, id string) (commonModels.Document, error)
	// List returns every document, or only those in status when it is non-nil, newest first.
	List(ctx context.Context, status *commonModels.Status) ([]commonModels.Document, error)

	// BeginProcessing moves the document to PROCESSING and clears last_error,
	// unless it is already PROCESSING, in which case ErrAlreadyProcessing is returned.
	BeginProcessing(ctx context.Context, id string) (commonModels.Document, error)
	MarkProcessed(ctx context.Context, id string, chunkCount int, at time.Time) (commonModels.Document, error)
	MarkFailed(ctx context.Context, id string, lastError string) (commonModels.Document, error)
	// ResetStale fails PROCESSING documents not updated since before olderThan.
	ResetStale(ctx context.Context, olderThan time.Time, reason string) ([]string, error)

	Delete(ctx context.Context, id string) error
}
