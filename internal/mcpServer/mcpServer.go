package mcpServer

import (
	"context"
	"errors"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	Name    = "docassist"
	Version = "1.0.0"

	// caller key used by the composer's rate limiter
	callerKey    = "mcp"
	defaultLimit = 5
	maxLimit     = 50
)

// Composer is the part of answer.Composer the tools need.
type Composer interface {
	Retrieve(ctx context.Context, caller, text string, limit int) ([]commonModels.RetrievalResult, error)
	Answer(ctx context.Context, q chatModel.Question) (chatModel.Answer, error)
}

type Server struct {
	composer Composer
	server   *mcp.Server
	logger   *logger_i.Logger
}

func New(composer Composer) (*Server, error) {
	if composer == nil {
		return nil, errors.New("mcp server needs a composer")
	}
	s := &Server{
		composer: composer,
		server:   mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil),
		logger:   logger_i.NewLogger("MCP Server"),
	}
	s.registerTools()
	return s, nil
}

// Run serves the tools over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP tools over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
