package session

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/portalworks/docportal/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID_Format(t *testing.T) {
	id := NewSessionID("session")
	assert.Regexp(t, regexp.MustCompile(`^session-\d{8}_\d{6}-[0-9a-f]{8}$`), id)
}

func TestNewSession_CreatesDirectory(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	sess, err := store.NewSession("analysis")
	require.NoError(t, err)

	info, err := os.Stat(sess.Path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, strings.HasPrefix(sess.ID, "analysis-"))
}

func TestSaveFile_UsesBaseName(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	sess, err := store.NewSession("analysis")
	require.NoError(t, err)

	path, err := sess.SaveFile("../../evil/report.txt", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sess.Path, "report.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestCombineDocuments_SortedWithHeaders(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	sess, err := store.NewSession("compare")
	require.NoError(t, err)

	_, err = sess.SaveFile("b.txt", strings.NewReader("second"))
	require.NoError(t, err)
	_, err = sess.SaveFile("a.txt", strings.NewReader("first"))
	require.NoError(t, err)
	// Unsupported files are ignored.
	_, err = sess.SaveFile("skip.bin", strings.NewReader("binary"))
	require.NoError(t, err)

	combined, err := sess.CombineDocuments(extract.NewExtractor())
	require.NoError(t, err)
	assert.Equal(t, "Document: a.txt\nfirst\n\nDocument: b.txt\nsecond", combined)
}

func TestCleanup_KeepsLatest(t *testing.T) {
	base := t.TempDir()
	store := NewStore(base, nil)

	// Names sort by embedded timestamp; fabricate three ages.
	for _, name := range []string{
		"s-20240101_000000-aaaaaaaa",
		"s-20240102_000000-bbbbbbbb",
		"s-20240103_000000-cccccccc",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(base, name), 0o755))
	}

	removed, err := store.Cleanup(2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(base, "s-20240101_000000-aaaaaaaa"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "s-20240103_000000-cccccccc"))
	assert.NoError(t, err)
}

func TestCleanup_MissingBaseDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent"), nil)

	removed, err := store.Cleanup(3)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
