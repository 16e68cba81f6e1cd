package rag_test

import (
	"context"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
)

// MockComposer implements rag.Answerer
type MockComposer struct {
	LastQuestion chatModel.Question
	OnAnswer     func(ctx context.Context, q chatModel.Question) (chatModel.Answer, error)
}

func (m *MockComposer) Answer(ctx context.Context, q chatModel.Question) (chatModel.Answer, error) {
	m.LastQuestion = q
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, q)
	}
	return chatModel.Answer{Text: "mocked answer", ContextFound: true}, nil
}

// MockIngestor implements rag.Ingestor
type MockIngestor struct {
	OnProcess func(ctx context.Context, documentID string) (commonModels.Document, error)
}

func (m *MockIngestor) Process(ctx context.Context, documentID string) (commonModels.Document, error) {
	if m.OnProcess != nil {
		return m.OnProcess(ctx, documentID)
	}
	return commonModels.Document{Id: documentID, Status: commonModels.StatusProcessed, ChunkCount: 1}, nil
}
