package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/DocAssist/internal/app"
	"github.com/akolanti/DocAssist/internal/data/documentStore"
	"github.com/akolanti/DocAssist/internal/data/objectStore"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/urfave/cli/v3"
)

const progressEvery = 10

type bulkIngest struct {
	documents  documentStore.Repository
	objects    objectStore.Store
	processor  processor
	department string
	category   string
	uploadedBy string
	out        io.Writer
	logger     *logger_i.Logger
}

type ingestSummary struct {
	Found        int
	Processed    int
	Failed       int
	NotAttempted int
}

// IngestAction uploads and ingests every recognized file under a directory.
func IngestAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		return fmt.Errorf("usage: docctl ingest <dir>")
	}
	pipeline, err := newPipeline(ctx, cmd, app.Options{NoCache: true})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	b := bulkIngest{
		documents:  pipeline.Documents,
		objects:    pipeline.Objects,
		processor:  pipeline.Orchestrator,
		department: cmd.String("department"),
		category:   cmd.String("category"),
		uploadedBy: cmd.String("uploaded-by"),
		out:        cmd.Root().Writer,
		logger:     logger_i.NewLogger("docctl ingest"),
	}
	summary, err := b.run(ctx, dir)
	if errors.Is(err, errorModel.ErrAuthentication) {
		return cli.Exit(fmt.Sprintf("ingestion halted: %v (%d files not attempted)", err, summary.NotAttempted), 2)
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files failed", summary.Failed, summary.Found), 1)
	}
	return nil
}

// findFiles lists every file under dir with a recognized extension, images
// included so they are reported as failures rather than skipped silently.
func findFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if commonModels.DetectDocType("", d.Name()) != commonModels.ERR {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (b bulkIngest) run(ctx context.Context, dir string) (ingestSummary, error) {
	files, err := findFiles(dir)
	if err != nil {
		return ingestSummary{}, err
	}
	summary := ingestSummary{Found: len(files)}
	b.logger.Info("found files to process", "dir", dir, "count", len(files))

	for n, path := range files {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if err := b.ingestFile(ctx, dir, path); err != nil {
			summary.Failed++
			b.logger.Error("failed to ingest file", "path", path, "error", err)
			fmt.Fprintf(b.out, "FAILED    %s: %v\n", path, err)
			if errors.Is(err, errorModel.ErrAuthentication) {
				summary.NotAttempted = len(files) - n - 1
				b.logger.Error("embedding credentials rejected, stopping bulk ingestion",
					"processed", summary.Processed, "failed", summary.Failed, "notAttempted", summary.NotAttempted)
				fmt.Fprintf(b.out, "Stopped: credentials rejected, %d files not attempted\n", summary.NotAttempted)
				return summary, err
			}
		} else {
			summary.Processed++
			fmt.Fprintf(b.out, "PROCESSED %s\n", path)
		}

		if (summary.Processed+summary.Failed)%progressEvery == 0 {
			b.logger.Info("progress", "processed", summary.Processed, "failed", summary.Failed)
		}
	}

	b.logger.Info("bulk ingestion completed", "processed", summary.Processed, "failed", summary.Failed)
	fmt.Fprintf(b.out, "Completed: %d processed, %d failed\n", summary.Processed, summary.Failed)
	return summary, nil
}

func (b bulkIngest) ingestFile(ctx context.Context, root, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fileName := filepath.Base(path)
	contentType := commonModels.ContentTypeFor(fileName)
	key := objectStore.SafeName(fileName)
	if err := b.objects.Put(ctx, key, data, contentType); err != nil {
		return err
	}

	doc, err := b.documents.Create(ctx, commonModels.Document{
		FileName:    fileName,
		SafeName:    key,
		Size:        int64(len(data)),
		ContentType: contentType,
		StoragePath: key,
		Department:  b.department,
		Category:    b.categoryFor(root, path),
		UploadedBy:  b.uploadedBy,
		Status:      commonModels.StatusPending,
	})
	if err != nil {
		_ = b.objects.Delete(ctx, key)
		return err
	}

	_, err = b.processor.Process(ctx, doc.Id)
	return err
}

// categoryFor falls back to the file's directory relative to root.
func (b bulkIngest) categoryFor(root, path string) string {
	if b.category != "" {
		return b.category
	}
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
