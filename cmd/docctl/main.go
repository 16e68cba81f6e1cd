package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/DocAssist/cmd/docctl/commands"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "docctl",
		Usage: "operate the DocAssist document library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "path to an optional .env file",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply the document and chunk schema",
				Action: commands.MigrateAction,
			},
			{
				Name:      "ingest",
				Usage:     "upload and ingest every supported file under a directory",
				ArgsUsage: "<dir>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "department", Usage: "department recorded on every document"},
					&cli.StringFlag{Name: "category", Usage: "category recorded on every document (default: the file's folder)"},
					&cli.StringFlag{Name: "uploaded-by", Usage: "uploader recorded on every document", Value: "docctl"},
				},
				Action: commands.IngestAction,
			},
			{
				Name:  "reprocess",
				Usage: "run ingestion again for existing documents",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "document id"},
					&cli.BoolFlag{Name: "failed", Usage: "every FAILED document"},
					&cli.DurationFlag{Name: "stale", Usage: "reset documents stuck in PROCESSING for longer than this, then reprocess them"},
				},
				Action: commands.ReprocessAction,
			},
			{
				Name:      "ask",
				Usage:     "answer a question from the document library",
				ArgsUsage: "<question>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Usage: "cees or chris", Value: "cees"},
					&cli.StringFlag{Name: "tier", Usage: "standard or advanced", Value: "standard"},
				},
				Action: commands.AskAction,
			},
			{
				Name:   "mcp",
				Usage:  "serve the document tools over MCP stdio",
				Action: commands.McpAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "docctl:", err)
		os.Exit(1)
	}
}
