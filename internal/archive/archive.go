package archive

import (
	"archive/zip"
	"crypto"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// Extension is appended to every archive name.
	Extension = ".zip"

	// TimestampLayout formats the invocation time as YYYYMMDD_HHMMSS.
	TimestampLayout = "20060102_150405"

	// DefaultChecksumFunction is used to fingerprint finished archives.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

var (
	// errUnsafeName is returned for entry names that are empty, absolute or climb out of the root.
	errUnsafeName = errors.New("unsafe entry name")
	// errNotRegular is returned when an entry source is not a regular file.
	errNotRegular = errors.New("not a regular file")
	// errClosed is returned when adding to a finished archive.
	errClosed = errors.New("archive is closed")
	// errHashUnavailable is returned when the checksum function is not linked in.
	errHashUnavailable = errors.New("hash function unavailable")
)

// Entry pairs a file on disk with its name inside the archive.
type Entry struct {
	// SourcePath is the filesystem path read when the entry is written.
	SourcePath string
	// Name is the slash-separated path relative to the packaged root.
	Name string
}

// Writer appends entries to a ZIP file on disk.
type Writer struct {
	file   *os.File
	zw     *zip.Writer
	count  int
	size   int64
	closed bool
}

// Name returns the archive file name for prefix at the given moment.
func Name(prefix string, now time.Time) string {
	return prefix + "_" + now.Format(TimestampLayout) + Extension
}

// Create opens a new archive at path, truncating any file already there.
func Create(path string) (*Writer, error) {
	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	return &Writer{
		file: file,
		zw:   zip.NewWriter(file),
	}, nil
}

// Count returns the number of entries written so far.
func (w *Writer) Count() int {
	return w.count
}

// Size returns the total uncompressed size of the entries written so far.
func (w *Writer) Size() int64 {
	return w.size
}

// Add copies the entry source into the archive.
// Symlinks are followed; the entry keeps the target's mode and modification time.
func (w *Writer) Add(entry Entry) error {
	if w.closed {
		return errClosed
	}

	name, err := sanitizeName(entry.Name)
	if err != nil {
		return err
	}

	info, err := os.Stat(entry.SourcePath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", name, errNotRegular)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("header %s: %w", name, err)
	}

	header.Name = name
	header.Method = zip.Deflate

	dst, err := w.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}

	src, err := os.Open(entry.SourcePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}

	// Read-only handle.
	defer func() {
		_ = src.Close()
	}()

	written, err := io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	w.count++
	w.size += written

	return nil
}

// Close finalizes the ZIP directory and closes the file. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true

	zipErr := w.zw.Close()
	fileErr := w.file.Close()

	if zipErr != nil {
		return fmt.Errorf("finalize archive: %w", zipErr)
	}

	if fileErr != nil {
		return fmt.Errorf("close archive: %w", fileErr)
	}

	return nil
}

// Checksum returns the DefaultChecksumFunction digest of the file at path.
func Checksum(path string) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := DefaultChecksumFunction.New()
	if _, err = io.Copy(hasher, file); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// sanitizeName converts name to the slash form stored in the archive and rejects escapes.
func sanitizeName(name string) (string, error) {
	slashed := strings.ReplaceAll(name, `\`, "/")
	cleaned := path.Clean(slashed)

	if slashed == "" || cleaned == "." || path.IsAbs(cleaned) ||
		cleaned == ".." || strings.HasPrefix(cleaned, "../") || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%q: %w", name, errUnsafeName)
	}

	return cleaned, nil
}
