package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/akolanti/DocAssist/internal/app"
	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/urfave/cli/v3"
)

// processor runs ingestion for one stored document.
type processor interface {
	Process(ctx context.Context, id string) (commonModels.Document, error)
}

// loadConfig reads the env file named by --env and sends logs to stderr so
// stdout stays free for command output and the MCP stdio transport.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if cmd.Bool("verbose") {
		level = "debug"
	}
	logger_i.InitWithWriter(os.Stderr, cfg.IsProd, level)
	return cfg, nil
}

func newPipeline(ctx context.Context, cmd *cli.Command, opts app.Options) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	pipeline, err := app.Build(ctx, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing pipeline: %w", err)
	}
	return pipeline, nil
}
