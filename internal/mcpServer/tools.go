package mcpServer

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SearchInput struct {
	Query string `json:"query" jsonschema:"text to search the internal documents for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

type SearchOutput struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

type SearchResult struct {
	DocumentId string  `json:"document_id"`
	FileName   string  `json:"filename"`
	Category   string  `json:"category,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from internal documents"`
	Mode     string `json:"mode,omitempty" jsonschema:"assistant persona: cees (technical support) or chris (procurement)"`
	Tier     string `json:"tier,omitempty" jsonschema:"model tier: standard or advanced"`
}

type AskOutput struct {
	Answer          string             `json:"answer"`
	Sources         []chatModel.Source `json:"sources"`
	ContextFound    bool               `json:"context_found"`
	RetrievalFailed bool               `json:"retrieval_failed"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Find passages in the internal document library that are similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the internal document library, citing the sources used",
	}, s.handleAsk)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchOutput{}, fmt.Errorf("query is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	results, err := s.composer.Retrieve(ctx, callerKey, query, limit)
	if err != nil {
		s.logger.FromContext(ctx).Error("search_documents failed", "error", err)
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{Results: make([]SearchResult, len(results)), Count: len(results)}
	for i, r := range results {
		output.Results[i] = SearchResult{
			DocumentId: r.Chunk.DocumentId,
			FileName:   r.FileName,
			Category:   r.Category,
			ChunkIndex: r.Chunk.Index,
			Score:      r.Similarity,
			Content:    r.Chunk.Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	mode, ok := chatModel.ParseMode(input.Mode)
	if !ok {
		return nil, AskOutput{}, fmt.Errorf("unknown mode %q", input.Mode)
	}
	tier, ok := chatModel.ParseTier(input.Tier)
	if !ok {
		return nil, AskOutput{}, fmt.Errorf("unknown tier %q", input.Tier)
	}

	ans, err := s.composer.Answer(ctx, chatModel.Question{
		Text:   input.Question,
		Mode:   mode,
		Tier:   tier,
		Caller: callerKey,
	})
	if err != nil {
		s.logger.FromContext(ctx).Error("ask failed", "error", err)
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Answer:          ans.Text,
		Sources:         ans.Sources,
		ContextFound:    ans.ContextFound,
		RetrievalFailed: ans.RetrievalFailed,
	}, nil
}
