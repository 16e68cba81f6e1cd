package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocAssist/internal/data/documentStore"
	"github.com/akolanti/DocAssist/internal/data/objectStore"
	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProcessor marks documents processed unless their file name is in fail.
type mockProcessor struct {
	mu    sync.Mutex
	docs  *documentStore.MemoryStore
	fail  map[string]bool
	calls []string
}

func (m *mockProcessor) Process(ctx context.Context, id string) (commonModels.Document, error) {
	m.mu.Lock()
	m.calls = append(m.calls, id)
	m.mu.Unlock()

	doc, err := m.docs.BeginProcessing(ctx, id)
	if err != nil {
		return doc, err
	}
	if m.fail[doc.FileName] {
		doc, _ = m.docs.MarkFailed(ctx, id, "ExtractionError: unsupported")
		return doc, errorModel.Extraction("extract", errors.New("unsupported"))
	}
	return m.docs.MarkProcessed(ctx, id, 2, time.Now())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newBulk(t *testing.T, fail map[string]bool) (bulkIngest, *documentStore.MemoryStore, *bytes.Buffer) {
	t.Helper()
	docs := documentStore.NewMemory()
	objects, err := objectStore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return bulkIngest{
		documents:  docs,
		objects:    objects,
		processor:  &mockProcessor{docs: docs, fail: fail},
		uploadedBy: "docctl",
		out:        out,
		logger:     logger_i.NewLogger("test"),
	}, docs, out
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "manual.pdf"), "x")
	writeFile(t, filepath.Join(dir, "notes.md"), "x")
	writeFile(t, filepath.Join(dir, "scan.PNG"), "x")
	writeFile(t, filepath.Join(dir, "archive.zip"), "x")
	writeFile(t, filepath.Join(dir, "sub", "policy.docx"), "x")
	writeFile(t, filepath.Join(dir, ".git", "config.txt"), "x")

	files, err := findFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.ElementsMatch(t, []string{"manual.pdf", "notes.md", "scan.PNG", "sub/policy.docx"}, names)

	_, err = findFiles(filepath.Join(dir, "manual.pdf"))
	assert.Error(t, err)
}

func TestBulkIngest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pumps", "pump.txt"), "Bleed the pump before first start.")
	writeFile(t, filepath.Join(dir, "readme.md"), "# Library")
	writeFile(t, filepath.Join(dir, "scan.png"), "\x89PNG")

	b, docs, out := newBulk(t, map[string]bool{"scan.png": true})
	summary, err := b.run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, ingestSummary{Found: 3, Processed: 2, Failed: 1}, summary)
	assert.Contains(t, out.String(), "Completed: 2 processed, 1 failed")

	all, err := docs.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)

	byName := map[string]commonModels.Document{}
	for _, d := range all {
		byName[d.FileName] = d
	}
	assert.Equal(t, "pumps", byName["pump.txt"].Category)
	assert.Equal(t, "", byName["readme.md"].Category)
	assert.Equal(t, "docctl", byName["pump.txt"].UploadedBy)
	assert.Equal(t, int64(len("# Library")), byName["readme.md"].Size)
	assert.Equal(t, commonModels.StatusFailed, byName["scan.png"].Status)

	data, err := b.objects.Get(context.Background(), byName["pump.txt"].StoragePath)
	require.NoError(t, err)
	assert.Equal(t, "Bleed the pump before first start.", string(data))
}

func TestBulkIngestCategoryFlag(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "x.txt"), "x")

	b, docs, _ := newBulk(t, nil)
	b.category = "manuals"
	_, err := b.run(context.Background(), dir)
	require.NoError(t, err)

	all, err := docs.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "manuals", all[0].Category)
}

func seed(t *testing.T, docs *documentStore.MemoryStore, name string) commonModels.Document {
	t.Helper()
	d, err := docs.Create(context.Background(), commonModels.Document{FileName: name, StoragePath: name})
	require.NoError(t, err)
	return d
}

func TestReprocessFailed(t *testing.T) {
	ctx := context.Background()
	docs := documentStore.NewMemory()
	ok := seed(t, docs, "ok.txt")
	broken := seed(t, docs, "broken.txt")
	untouched := seed(t, docs, "pending.txt")
	for _, d := range []commonModels.Document{ok, broken} {
		_, err := docs.BeginProcessing(ctx, d.Id)
		require.NoError(t, err)
		_, err = docs.MarkFailed(ctx, d.Id, "UpstreamTransient: 503")
		require.NoError(t, err)
	}

	p := &mockProcessor{docs: docs, fail: map[string]bool{"broken.txt": true}}
	out := &bytes.Buffer{}
	failed, err := reprocess(ctx, docs, p, selection{failed: true}, out)
	require.NoError(t, err)

	assert.Equal(t, 1, failed)
	assert.ElementsMatch(t, []string{ok.Id, broken.Id}, p.calls)
	assert.NotContains(t, p.calls, untouched.Id)
	assert.Contains(t, out.String(), "Completed: 2 documents, 1 failed")

	got, err := docs.Get(ctx, ok.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessed, got.Status)
}

func TestReprocessByIdAndStale(t *testing.T) {
	ctx := context.Background()
	docs := documentStore.NewMemory()
	stuck := seed(t, docs, "stuck.txt")
	_, err := docs.BeginProcessing(ctx, stuck.Id)
	require.NoError(t, err)

	p := &mockProcessor{docs: docs}
	out := &bytes.Buffer{}

	// without --stale a stuck document is skipped
	_, err = reprocess(ctx, docs, p, selection{id: stuck.Id}, out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "already processing")

	time.Sleep(5 * time.Millisecond)
	out.Reset()
	failed, err := reprocess(ctx, docs, p, selection{id: stuck.Id, stale: time.Millisecond}, out)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Equal(t, 1, strings.Count(out.String(), "PROCESSED"))

	got, err := docs.Get(ctx, stuck.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.StatusProcessed, got.Status)
}

func TestReprocessUnknownId(t *testing.T) {
	docs := documentStore.NewMemory()
	_, err := reprocess(context.Background(), docs, &mockProcessor{docs: docs}, selection{id: "missing"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, errorModel.ErrNotFound)
}

func TestSelectionValid(t *testing.T) {
	assert.False(t, selection{}.valid())
	assert.True(t, selection{id: "x"}.valid())
	assert.True(t, selection{failed: true}.valid())
	assert.True(t, selection{stale: time.Hour}.valid())
}

func TestPrintAnswer(t *testing.T) {
	out := &bytes.Buffer{}
	printAnswer(out, chatModel.Answer{
		Text: "Bleed the pump first [1].",
		Sources: []chatModel.Source{
			{FileName: "pump-manual.pdf", Category: "manuals", ChunkIndex: 3, Similarity: 0.876},
		},
	})
	assert.Equal(t, "Bleed the pump first [1].\n\nSources:\n  [1] pump-manual.pdf (manuals) chunk 3, similarity 0.88\n", out.String())

	out.Reset()
	printAnswer(out, chatModel.Answer{Text: "No idea."})
	assert.Equal(t, "No idea.\n", out.String())
}

// rejectingProcessor fails every document the way an embedder with revoked
// credentials does.
type rejectingProcessor struct {
	docs  *documentStore.MemoryStore
	calls int
}

func (r *rejectingProcessor) Process(ctx context.Context, id string) (commonModels.Document, error) {
	r.calls++
	if _, err := r.docs.BeginProcessing(ctx, id); err != nil {
		return commonModels.Document{}, err
	}
	doc, _ := r.docs.MarkFailed(ctx, id, "UpstreamAuthError: 401")
	return doc, errorModel.Auth("embed", errors.New("401 invalid api key"))
}

func TestBulkIngestStopsOnAuthFailure(t *testing.T) {
	dir := t.TempDir()
	for i := range 5 {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("doc%d.txt", i)), "pump")
	}

	b, docs, out := newBulk(t, nil)
	rejecting := &rejectingProcessor{docs: docs}
	b.processor = rejecting

	summary, err := b.run(context.Background(), dir)
	assert.ErrorIs(t, err, errorModel.ErrAuthentication)
	assert.Equal(t, 1, rejecting.calls)
	assert.Equal(t, ingestSummary{Found: 5, Failed: 1, NotAttempted: 4}, summary)
	assert.Contains(t, out.String(), "4 files not attempted")

	failed := commonModels.StatusFailed
	list, err := docs.List(context.Background(), &failed)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReprocessStopsOnAuthFailure(t *testing.T) {
	ctx := context.Background()
	docs := documentStore.NewMemory()
	for i := range 3 {
		d := seed(t, docs, fmt.Sprintf("doc%d.txt", i))
		_, err := docs.BeginProcessing(ctx, d.Id)
		require.NoError(t, err)
		_, err = docs.MarkFailed(ctx, d.Id, "UpstreamTransient: 503")
		require.NoError(t, err)
	}

	rejecting := &rejectingProcessor{docs: docs}
	out := &bytes.Buffer{}
	failed, err := reprocess(ctx, docs, rejecting, selection{failed: true}, out)
	assert.ErrorIs(t, err, errorModel.ErrAuthentication)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, rejecting.calls)
	assert.Contains(t, out.String(), "2 documents not attempted")
}
