package archive

import (
	"archive/zip"
	"crypto/sha512"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestName checks the prefix_YYYYMMDD_HHMMSS.zip layout.
func TestName(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 5, 7, 8, 9, 999, time.Local)
	require.Equal(t, "multimodal_ai_assistant_20240305_070809.zip", Name("multimodal_ai_assistant", now))

	// Same second, same name.
	require.Equal(t, Name("p", now), Name("p", now.Add(500*time.Millisecond)))
	require.NotEqual(t, Name("p", now), Name("p", now.Add(2*time.Second)))
}

// TestWriter_RoundTrip writes entries and reads them back with archive/zip.
func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(src, []byte("print('hi')\n"), 0o644))

	nested := filepath.Join(dir, "static", "css", "site.css")
	require.NoError(t, os.MkdirAll(filepath.Dir(nested), 0o755))
	require.NoError(t, os.WriteFile(nested, []byte("body{}"), 0o644))

	out := filepath.Join(dir, "out.zip")

	w, err := Create(out)
	require.NoError(t, err)

	require.NoError(t, w.Add(Entry{SourcePath: src, Name: "app.py"}))
	require.NoError(t, w.Add(Entry{SourcePath: nested, Name: filepath.Join("static", "css", "site.css")}))
	require.Equal(t, 2, w.Count())
	require.EqualValues(t, len("print('hi')\n")+len("body{}"), w.Size())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.ErrorIs(t, w.Add(Entry{SourcePath: src, Name: "again.py"}), errClosed)

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)

	defer func() {
		_ = zr.Close()
	}()

	require.Len(t, zr.File, 2)
	require.Equal(t, "app.py", zr.File[0].Name)
	require.Equal(t, "static/css/site.css", zr.File[1].Name)

	for _, f := range zr.File {
		require.Equal(t, zip.Deflate, f.Method)
	}

	rc, err := zr.File[0].Open()
	require.NoError(t, err)

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "print('hi')\n", string(body))
}

// TestWriter_RejectsUnsafeNames guards against entries escaping the extraction directory.
func TestWriter_RejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))

	w, err := Create(filepath.Join(dir, "out.zip"))
	require.NoError(t, err)

	defer func() {
		_ = w.Close()
	}()

	for _, name := range []string{"", ".", "/etc/passwd", "../a.txt", `..\a.txt`} {
		require.ErrorIs(t, w.Add(Entry{SourcePath: src, Name: name}), errUnsafeName, name)
	}

	require.ErrorIs(t, w.Add(Entry{SourcePath: dir, Name: "dir"}), errNotRegular)
	require.ErrorIs(t, w.Add(Entry{SourcePath: filepath.Join(dir, "missing"), Name: "missing"}), os.ErrNotExist)
	require.Zero(t, w.Count())
}

// TestChecksum matches the digest computed directly with crypto/sha512.
func TestChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	got, err := Checksum(path)
	require.NoError(t, err)

	want := sha512.Sum512([]byte("payload"))
	require.Equal(t, want[:], got)

	_, err = Checksum(path + ".missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}
