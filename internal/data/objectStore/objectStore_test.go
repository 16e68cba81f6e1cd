package objectStore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "docs/a.txt", []byte("hello"), "text/plain"))
	data, err := s.Get(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "docs/a.txt"))
	_, err = s.Get(ctx, "docs/a.txt")
	assert.ErrorIs(t, err, errorModel.ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "docs/a.txt"))
}

func TestKeysStayInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileStore(filepath.Join(root, "store"))
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "../../escape.txt", []byte("x"), "text/plain"))
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))

	data, err := s.Get(ctx, "escape.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestSafeName(t *testing.T) {
	a := SafeName("Quarterly Report (final).pdf")
	b := SafeName("Quarterly Report (final).pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-Quarterly_Report_final_.pdf"), a)

	assert.True(t, strings.HasSuffix(SafeName("../../etc/passwd"), "-passwd"))
	assert.True(t, strings.HasSuffix(SafeName("..."), "-document"))
}
