package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxSize bounds documents read from or written to a Store
const DefaultMaxSize = 16 * 1024 * 1024 // 16 MB

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrTooLarge    = errors.New("document too large")
)

// FileItem represents a file or directory below the store root
type FileItem struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	IsDir    bool      `json:"isDir"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Listing represents the contents of a directory below the store root.
// Paths are relative to the root.
type Listing struct {
	Path   string     `json:"path"`
	Parent string     `json:"parent"`
	Items  []FileItem `json:"items"`
}

// Store reads and writes documents below a root directory
type Store struct {
	root    string
	maxSize int64
}

// NewStore opens a store rooted at dir. A maxSize <= 0 selects DefaultMaxSize.
func NewStore(dir string, maxSize int64) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: root required", ErrInvalidPath)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open document root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, root)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Store{root: root, maxSize: maxSize}, nil
}

// Root returns the absolute directory the store serves
func (s *Store) Root() string {
	return s.root
}

// MaxSize returns the largest document in bytes the store reads or writes
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// resolve maps a slash separated path relative to the root onto the file
// system, refusing anything that leaves the root.
func (s *Store) resolve(rel string) (string, error) {
	if strings.Contains(rel, "..") {
		return "", fmt.Errorf("%w: directory traversal not allowed", ErrInvalidPath)
	}
	clean := filepath.Clean("/" + filepath.FromSlash(rel))
	return filepath.Join(s.root, clean), nil
}

func (s *Store) relative(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// List returns the entries of the directory at rel. The empty path is the root.
func (s *Store) List(rel string) (*Listing, error) {
	dirPath, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", rel, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrInvalidPath, rel)
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", rel, err)
	}

	items := make([]FileItem, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, FileItem{
			Name:     entry.Name(),
			Path:     s.relative(filepath.Join(dirPath, entry.Name())),
			IsDir:    entry.IsDir(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	listing := &Listing{Path: s.relative(dirPath), Items: items}
	if dirPath != s.root {
		listing.Parent = s.relative(filepath.Dir(dirPath))
	}
	return listing, nil
}

// Path returns the file system path of the regular file at rel
func (s *Store) Path(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("%w: file path required", ErrInvalidPath)
	}
	filePath, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", rel, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %q is a directory", ErrInvalidPath, rel)
	}
	return filePath, nil
}

// Open reads the document at rel
func (s *Store) Open(rel string) (*Document, error) {
	filePath, err := s.Path(rel)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrTooLarge, rel, s.maxSize)
	}
	return New(string(data)), nil
}

// Save writes r to the file name inside the directory dir, replacing any
// existing file. It returns the path of the new document relative to the root.
func (s *Store) Save(dir, name string, r io.Reader) (string, error) {
	dirPath, err := s.resolve(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dirPath)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: destination %q is not a directory", ErrInvalidPath, dir)
	}

	filename := filepath.Base(name)
	if filename == "" || filename == "." || filename == ".." || filename == string(filepath.Separator) {
		return "", fmt.Errorf("%w: invalid filename", ErrInvalidPath)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%w: max %d bytes", ErrTooLarge, s.maxSize)
	}

	dest := filepath.Join(dirPath, filename)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	return s.relative(dest), nil
}
