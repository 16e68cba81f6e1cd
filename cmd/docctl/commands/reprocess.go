package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/akolanti/DocAssist/internal/app"
	"github.com/akolanti/DocAssist/internal/data/documentStore"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/urfave/cli/v3"
)

// staleReason is recorded on documents whose processing run never finished.
const staleReason = "interrupted"

type selection struct {
	id     string
	failed bool
	stale  time.Duration
}

func (s selection) valid() bool {
	return s.id != "" || s.failed || s.stale > 0
}

// ReprocessAction re-runs ingestion for one document, every FAILED document,
// or documents left in PROCESSING longer than --stale.
func ReprocessAction(ctx context.Context, cmd *cli.Command) error {
	sel := selection{id: cmd.String("id"), failed: cmd.Bool("failed"), stale: cmd.Duration("stale")}
	if !sel.valid() {
		return fmt.Errorf("one of --id, --failed or --stale is required")
	}
	pipeline, err := newPipeline(ctx, cmd, app.Options{NoCache: true})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	failed, err := reprocess(ctx, pipeline.Documents, pipeline.Orchestrator, sel, cmd.Root().Writer)
	if errors.Is(err, errorModel.ErrAuthentication) {
		return cli.Exit(fmt.Sprintf("reprocess halted: %v", err), 2)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d documents failed", failed), 1)
	}
	return nil
}

// reprocess returns how many selected documents failed again.
func reprocess(ctx context.Context, docs documentStore.Repository, p processor, sel selection, out io.Writer) (int, error) {
	log := logger_i.NewLogger("docctl reprocess")

	var ids []string
	if sel.stale > 0 {
		reset, err := docs.ResetStale(ctx, time.Now().Add(-sel.stale), staleReason)
		if err != nil {
			return 0, err
		}
		log.Info("reset stale documents", "count", len(reset), "olderThan", sel.stale)
		ids = append(ids, reset...)
	}
	if sel.failed {
		status := commonModels.StatusFailed
		list, err := docs.List(ctx, &status)
		if err != nil {
			return 0, err
		}
		for _, d := range list {
			ids = append(ids, d.Id)
		}
	}
	if sel.id != "" {
		ids = append(ids, sel.id)
	}

	seen := make(map[string]bool, len(ids))
	failed := 0
	for n, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		doc, err := p.Process(ctx, id)
		switch {
		case errors.Is(err, errorModel.ErrNotFound):
			return failed, err
		case errors.Is(err, errorModel.ErrAlreadyProcessing):
			fmt.Fprintf(out, "SKIPPED   %s: already processing\n", id)
		case errors.Is(err, errorModel.ErrAuthentication):
			failed++
			rest := remaining(ids[n+1:], seen)
			fmt.Fprintf(out, "FAILED    %s (%s): %v\n", id, doc.FileName, err)
			fmt.Fprintf(out, "Stopped: credentials rejected, %d documents not attempted\n", rest)
			log.Error("embedding credentials rejected, stopping reprocess", "failed", failed, "notAttempted", rest)
			return failed, err
		case err != nil:
			failed++
			fmt.Fprintf(out, "FAILED    %s (%s): %v\n", id, doc.FileName, err)
		default:
			fmt.Fprintf(out, "PROCESSED %s (%s): %d chunks\n", id, doc.FileName, doc.ChunkCount)
		}
	}
	fmt.Fprintf(out, "Completed: %d documents, %d failed\n", len(seen), failed)
	return failed, nil
}

// remaining counts the distinct ids not yet processed.
func remaining(ids []string, seen map[string]bool) int {
	left := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			left[id] = true
		}
	}
	return len(left)
}
