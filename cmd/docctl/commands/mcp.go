package commands

import (
	"context"

	"github.com/akolanti/DocAssist/internal/app"
	"github.com/akolanti/DocAssist/internal/mcpServer"
	"github.com/urfave/cli/v3"
)

// McpAction serves the search and ask tools over stdio.
func McpAction(ctx context.Context, cmd *cli.Command) error {
	pipeline, err := newPipeline(ctx, cmd, app.Options{SkipMigrate: true})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	server, err := mcpServer.New(pipeline.Composer)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}
