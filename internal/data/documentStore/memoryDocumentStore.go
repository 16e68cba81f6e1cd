package documentStore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/google/uuid"
)

// ChunkDeleter is notified when a document goes away so its chunks follow.
type ChunkDeleter interface {
	DeleteDocument(ctx context.Context, documentID string) error
}

// MemoryStore keeps documents in process, for tests and the memory backend.
type MemoryStore struct {
	mu     sync.Mutex
	docs   map[string]commonModels.Document
	chunks ChunkDeleter
}

var _ Repository = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{docs: make(map[string]commonModels.Document)}
}

// OnDelete cascades document deletes to a chunk store.
func (s *MemoryStore) OnDelete(chunks ChunkDeleter) {
	s.chunks = chunks
}

func clone(d commonModels.Document) commonModels.Document {
	if d.ProcessedAt != nil {
		at := *d.ProcessedAt
		d.ProcessedAt = &at
	}
	if d.LastError != nil {
		msg := *d.LastError
		d.LastError = &msg
	}
	return d
}

func (s *MemoryStore) Create(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.Id == "" {
		doc.Id = uuid.NewString()
	}
	if _, exists := s.docs[doc.Id]; exists {
		return commonModels.Document{}, errorModel.InvalidInput("create document", fmt.Errorf("document %s already exists", doc.Id))
	}
	if doc.Status == "" {
		doc.Status = commonModels.StatusPending
	}
	now := time.Now().UTC()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = now
	}
	doc.UpdatedAt = now
	s.docs[doc.Id] = clone(doc)
	return clone(doc), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (commonModels.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return commonModels.Document{}, notFound("get document", id)
	}
	return clone(doc), nil
}

func (s *MemoryStore) List(ctx context.Context, status *commonModels.Status) ([]commonModels.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := []commonModels.Document{}
	for _, d := range s.docs {
		if status != nil && d.Status != *status {
			continue
		}
		docs = append(docs, clone(d))
	}
	slices.SortFunc(docs, func(a, b commonModels.Document) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
	return docs, nil
}

func (s *MemoryStore) update(op, id string, fn func(*commonModels.Document) error) (commonModels.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return commonModels.Document{}, notFound(op, id)
	}
	if err := fn(&doc); err != nil {
		return commonModels.Document{}, err
	}
	doc.UpdatedAt = time.Now().UTC()
	s.docs[id] = doc
	return clone(doc), nil
}

func (s *MemoryStore) BeginProcessing(ctx context.Context, id string) (commonModels.Document, error) {
	return s.update("begin processing", id, func(d *commonModels.Document) error {
		if d.Status == commonModels.StatusProcessing {
			return errorModel.New(errorModel.KindAlreadyRunning, "begin processing", fmt.Errorf("document %s", id))
		}
		d.Status = commonModels.StatusProcessing
		d.LastError = nil
		return nil
	})
}

func (s *MemoryStore) MarkProcessed(ctx context.Context, id string, chunkCount int, at time.Time) (commonModels.Document, error) {
	return s.update("mark processed", id, func(d *commonModels.Document) error {
		at := at.UTC()
		d.Status = commonModels.StatusProcessed
		d.ProcessedAt = &at
		d.ChunkCount = chunkCount
		d.LastError = nil
		return nil
	})
}

func (s *MemoryStore) MarkFailed(ctx context.Context, id string, lastError string) (commonModels.Document, error) {
	return s.update("mark failed", id, func(d *commonModels.Document) error {
		d.Status = commonModels.StatusFailed
		d.LastError = &lastError
		return nil
	})
}

func (s *MemoryStore) ResetStale(ctx context.Context, olderThan time.Time, reason string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, d := range s.docs {
		if d.Status != commonModels.StatusProcessing || !d.UpdatedAt.Before(olderThan) {
			continue
		}
		msg := reason
		d.Status = commonModels.StatusFailed
		d.LastError = &msg
		d.UpdatedAt = time.Now().UTC()
		s.docs[id] = d
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	s.mu.Unlock()

	if !ok {
		return notFound("delete document", id)
	}
	if s.chunks != nil {
		return s.chunks.DeleteDocument(ctx, id)
	}
	return nil
}
