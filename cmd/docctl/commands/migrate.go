package commands

import (
	"context"
	"fmt"

	"github.com/akolanti/DocAssist/internal/data/postgres"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/urfave/cli/v3"
)

// MigrateAction applies the document and chunk schema to Postgres.
func MigrateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.ChunkBackend == "memory" {
		return fmt.Errorf("CHUNK_STORE is memory, nothing to migrate")
	}

	pool, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, cfg.Embedding.Dimension); err != nil {
		return err
	}
	logger_i.NewLogger("docctl").Info("schema applied", "dimension", cfg.Embedding.Dimension)
	fmt.Fprintln(cmd.Root().Writer, "schema is up to date")
	return nil
}
