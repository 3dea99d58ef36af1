package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyFile is returned when an upload carries no bytes.
	ErrEmptyFile = errors.New("empty file")
	// ErrInvalidPath is returned for names that would leave the storage root.
	ErrInvalidPath = errors.New("invalid file path")
)

// Store keeps uploaded files under a root directory, one subfolder per owner.
// Paths handed out are relative to the root and always use forward slashes.
type Store struct {
	root string
}

// New creates the root directory if needed and returns a Store for it.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string {
	return s.root
}

// Save writes r to <subfolder>/<uuid><ext>, keeping the extension of
// originalName, and returns the relative path.
func (s *Store) Save(subfolder, originalName string, r io.Reader) (string, error) {
	if !validSegment(subfolder) {
		return "", ErrInvalidPath
	}
	originalName = filepath.Base(filepath.Clean(originalName))
	if strings.Contains(originalName, "..") {
		return "", ErrInvalidPath
	}

	dir := filepath.Join(s.root, subfolder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create folder %s: %w", subfolder, err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	dest := filepath.Join(dir, name)
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest) // Clean up partial file
		return "", fmt.Errorf("write file: %w", err)
	}
	if n == 0 {
		os.Remove(dest)
		return "", ErrEmptyFile
	}

	return path.Join(subfolder, name), nil
}

// Open opens a stored file for reading.
func (s *Store) Open(relPath string) (*os.File, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *Store) Delete(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Walk calls fn for every stored regular file with its relative path.
func (s *Store) Walk(fn func(relPath string, info fs.FileInfo) error) error {
	return filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), info)
	})
}

// ContentType guesses a MIME type from the file extension, falling back to
// sniffing head.
func ContentType(name string, head []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	if len(head) > 0 {
		return http.DetectContentType(head)
	}
	return "application/octet-stream"
}

// resolve maps a relative path to an absolute one inside the root.
func (s *Store) resolve(relPath string) (string, error) {
	if relPath == "" || strings.Contains(relPath, "\\") || path.IsAbs(relPath) {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(relPath, "/") {
		if !validSegment(seg) {
			return "", ErrInvalidPath
		}
	}
	full := filepath.Join(s.root, filepath.FromSlash(relPath))
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

func validSegment(seg string) bool {
	return seg != "" && seg != "." && seg != ".." && !strings.ContainsAny(seg, `/\`)
}
