package documentStore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocAssist/internal/data/postgres"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, filename, safe_filename, size, content_type, storage_path, department, category,
subject, uploaded_by, uploaded_at, updated_at, status, processed_at, chunk_count, last_error`

type pgDocumentStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &pgDocumentStore{pool: pool}
}

func scanDocument(row pgx.Row) (commonModels.Document, error) {
	var d commonModels.Document
	var status string
	err := row.Scan(&d.Id, &d.FileName, &d.SafeName, &d.Size, &d.ContentType, &d.StoragePath,
		&d.Department, &d.Category, &d.Subject, &d.UploadedBy, &d.UploadedAt, &d.UpdatedAt,
		&status, &d.ProcessedAt, &d.ChunkCount, &d.LastError)
	d.Status = commonModels.Status(status)
	return d, err
}

func notFound(op, id string) error {
	return errorModel.New(errorModel.KindNotFound, op, fmt.Errorf("document %s", id))
}

func (s *pgDocumentStore) Create(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	if doc.Id == "" {
		doc.Id = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = commonModels.StatusPending
	}
	now := time.Now().UTC()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = now
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO documents (id, filename, safe_filename, size, content_type, storage_path, department,
		                       category, subject, uploaded_by, uploaded_at, updated_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+documentColumns,
		doc.Id, doc.FileName, doc.SafeName, doc.Size, doc.ContentType, doc.StoragePath, doc.Department,
		doc.Category, doc.Subject, doc.UploadedBy, doc.UploadedAt, now, string(doc.Status))
	created, err := scanDocument(row)
	if err != nil {
		return commonModels.Document{}, postgres.Unavailable("create document", err)
	}
	return created, nil
}

func (s *pgDocumentStore) Get(ctx context.Context, id string) (commonModels.Document, error) {
	doc, err := scanDocument(s.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return commonModels.Document{}, notFound("get document", id)
	}
	if err != nil {
		return commonModels.Document{}, postgres.Unavailable("get document", err)
	}
	return doc, nil
}

func (s *pgDocumentStore) List(ctx context.Context, status *commonModels.Status) ([]commonModels.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.Unavailable("list documents", err)
	}
	defer rows.Close()

	docs := []commonModels.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, postgres.Unavailable("list documents", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Unavailable("list documents", err)
	}
	return docs, nil
}

// BeginProcessing is a single conditional UPDATE; the row's status column is the
// compare-and-swap word, so two callers racing on one id cannot both win.
func (s *pgDocumentStore) BeginProcessing(ctx context.Context, id string) (commonModels.Document, error) {
	doc, err := scanDocument(s.pool.QueryRow(ctx, `
		UPDATE documents
		SET status = 'PROCESSING', last_error = NULL, updated_at = now()
		WHERE id = $1 AND status <> 'PROCESSING'
		RETURNING `+documentColumns, id))
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return commonModels.Document{}, postgres.Unavailable("begin processing", err)
	}

	// no row updated: either missing or somebody else holds it
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return commonModels.Document{}, getErr
	}
	return commonModels.Document{}, errorModel.New(errorModel.KindAlreadyRunning, "begin processing", fmt.Errorf("document %s", id))
}

func (s *pgDocumentStore) MarkProcessed(ctx context.Context, id string, chunkCount int, at time.Time) (commonModels.Document, error) {
	doc, err := scanDocument(s.pool.QueryRow(ctx, `
		UPDATE documents
		SET status = 'PROCESSED', processed_at = $2, chunk_count = $3, last_error = NULL, updated_at = now()
		WHERE id = $1
		RETURNING `+documentColumns, id, at.UTC(), chunkCount))
	if errors.Is(err, pgx.ErrNoRows) {
		return commonModels.Document{}, notFound("mark processed", id)
	}
	if err != nil {
		return commonModels.Document{}, postgres.Unavailable("mark processed", err)
	}
	return doc, nil
}

func (s *pgDocumentStore) MarkFailed(ctx context.Context, id string, lastError string) (commonModels.Document, error) {
	doc, err := scanDocument(s.pool.QueryRow(ctx, `
		UPDATE documents
		SET status = 'FAILED', last_error = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+documentColumns, id, lastError))
	if errors.Is(err, pgx.ErrNoRows) {
		return commonModels.Document{}, notFound("mark failed", id)
	}
	if err != nil {
		return commonModels.Document{}, postgres.Unavailable("mark failed", err)
	}
	return doc, nil
}

func (s *pgDocumentStore) ResetStale(ctx context.Context, olderThan time.Time, reason string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE documents
		SET status = 'FAILED', last_error = $2, updated_at = now()
		WHERE status = 'PROCESSING' AND updated_at < $1
		RETURNING id`, olderThan.UTC(), reason)
	if err != nil {
		return nil, postgres.Unavailable("reset stale", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.Unavailable("reset stale", err)
	}
	return ids, nil
}

// Delete removes the row; document_chunks cascade.
func (s *pgDocumentStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return postgres.Unavailable("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("delete document", id)
	}
	return nil
}
