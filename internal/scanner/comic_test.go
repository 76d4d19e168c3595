package scanner

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConverter captures conversion calls without invoking ffmpeg.
type recordingConverter struct {
	mu    sync.Mutex
	calls [][2]string
}

func (c *recordingConverter) Convert(src, dest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, [2]string{src, dest})
	return nil
}

func writeComicArchive(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestComicParserParseAll(t *testing.T) {
	root := t.TempDir()
	coverDir := t.TempDir()
	rel := filepath.Join("Series", "issue-001.cbz")
	writeComicArchive(t, filepath.Join(root, rel), map[string][]byte{
		"page001.jpg": []byte("front cover"),
	})

	conv := &recordingConverter{}
	p := &ComicParser{CoverDir: coverDir, Converter: conv}
	comics, errs := p.ParseAll(root, []string{rel})

	require.Empty(t, errs)
	require.Len(t, comics, 1)
	c := comics[0]
	assert.Equal(t, rel, c.Path)
	assert.Equal(t, "issue-001", c.Title)
	assert.Equal(t, "issue-001.cbz", c.File)
	assert.Equal(t, []string{"issue-001"}, c.Posters)

	// The cover lands at the extension-stripped archive path and is
	// converted in place.
	dest := filepath.Join(coverDir, "Series", "issue-001")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "front cover", string(data))
	require.Len(t, conv.calls, 1)
	assert.Equal(t, [2]string{dest, dest}, conv.calls[0])
}

func TestComicParserBadArchive(t *testing.T) {
	root := t.TempDir()
	good := "good.cbz"
	bad := "bad.cbz"
	writeComicArchive(t, filepath.Join(root, good), map[string][]byte{"p.jpg": []byte("x")})
	require.NoError(t, os.WriteFile(filepath.Join(root, bad), []byte("not a zip"), 0644))

	p := &ComicParser{CoverDir: t.TempDir()}
	comics, errs := p.ParseAll(root, []string{good, bad})

	require.Len(t, comics, 1)
	assert.Equal(t, good, comics[0].Path)
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "open comic archive")
}

func TestComicParserEmptyArchive(t *testing.T) {
	root := t.TempDir()
	writeComicArchive(t, filepath.Join(root, "empty.cbz"), nil)

	p := &ComicParser{CoverDir: t.TempDir()}
	comics, errs := p.ParseAll(root, []string{"empty.cbz"})

	// No cover, but the record itself still emits.
	require.Empty(t, errs)
	require.Len(t, comics, 1)
	assert.Equal(t, "empty", comics[0].Title)
}

func TestStripComicExt(t *testing.T) {
	assert.Equal(t, "a/b/issue", stripComicExt("a/b/issue.cbz"))
	assert.Equal(t, "issue", stripComicExt("issue.CBR"))
	assert.Equal(t, "notes.txt", stripComicExt("notes.txt"))
}
