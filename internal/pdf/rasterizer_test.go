package pdf

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	calls  [][]string
	stdout string
	err    error
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if s.err != nil {
		return nil, []byte("boom"), s.err
	}
	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+".jpg", []byte("jpeg"), 0o644); err != nil {
			return nil, nil, err
		}
	}
	return []byte(s.stdout), nil, nil
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func pages(n int) func(string) (int, error) {
	return func(string) (int, error) { return n, nil }
}

func TestToImages_BoundedByMaxPages(t *testing.T) {
	runner := &stubRunner{}
	r := NewRasterizer(Config{}).WithRunner(runner, pages(5))
	out := t.TempDir()

	images, err := r.ToImages(context.Background(), writePDF(t), out, 150, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, "page_1.jpg"),
		filepath.Join(out, "page_2.jpg"),
	}, images)
	require.Len(t, runner.calls, 2)
	assert.Contains(t, runner.calls[0], "-singlefile")
	assert.Equal(t, []string{"-r", "150"}, runner.calls[0][2:4])
}

func TestToImages_FewerPagesThanMax(t *testing.T) {
	r := NewRasterizer(Config{}).WithRunner(&stubRunner{}, pages(1))
	images, err := r.ToImages(context.Background(), writePDF(t), t.TempDir(), 150, 3)
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestToImages_MissingFile(t *testing.T) {
	r := NewRasterizer(Config{}).WithRunner(&stubRunner{}, pages(1))
	_, err := r.ToImages(context.Background(), "/does/not/exist.pdf", t.TempDir(), 150, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestToImages_RenderFailure(t *testing.T) {
	r := NewRasterizer(Config{}).WithRunner(&stubRunner{err: errors.New("exit status 1")}, pages(2))
	_, err := r.ToImages(context.Background(), writePDF(t), t.TempDir(), 150, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExtractText_SplitsOnFormFeed(t *testing.T) {
	runner := &stubRunner{stdout: "first page\fsecond page\f"}
	r := NewRasterizer(Config{}).WithRunner(runner, nil)

	got, err := r.ExtractText(context.Background(), writePDF(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"first page", "second page"}, got)
	assert.Equal(t, "pdftotext", runner.calls[0][0])
}

func TestToImages_MissingOutputIsNotMissingInput(t *testing.T) {
	// The renderer exits cleanly but writes nothing.
	r := NewRasterizer(Config{Pdftoppm: "broken-pdftoppm"}).WithRunner(&stubRunner{}, pages(1))
	_, err := r.ToImages(context.Background(), writePDF(t), t.TempDir(), 150, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendered no image for page 1")
	assert.False(t, errors.Is(err, fs.ErrNotExist))
}

func TestRenderPages_DoesNotCountPages(t *testing.T) {
	counted := 0
	r := NewRasterizer(Config{}).WithRunner(&stubRunner{}, func(string) (int, error) {
		counted++
		return 9, nil
	})
	images, err := r.RenderPages(context.Background(), writePDF(t), t.TempDir(), 150, 2)
	require.NoError(t, err)
	assert.Len(t, images, 2)
	assert.Zero(t, counted)
}

func TestPageCount_FallsBackToPdfinfo(t *testing.T) {
	runner := &stubRunner{stdout: "Producer:       scanner\nPages:          3\nEncrypted:      no\n"}
	r := NewRasterizer(Config{}).WithRunner(runner, nil)

	n, err := r.PageCount(context.Background(), writePDF(t))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "pdfinfo", runner.calls[0][0])
}

func TestPageCount_BothCountersFail(t *testing.T) {
	runner := &stubRunner{stdout: "Producer: scanner\n"}
	r := NewRasterizer(Config{}).WithRunner(runner, nil)

	_, err := r.PageCount(context.Background(), writePDF(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "printed no page count")
}
