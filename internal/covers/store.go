package covers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/mrlokans/library-manager/internal/utils"
)

// DefaultExtension is used when an image name carries no recognised extension.
const DefaultExtension = ".jpg"

// ErrEmptyUpload is returned when a cover source has no content.
var ErrEmptyUpload = errors.New("cover image is empty")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Store persists book cover images in a single directory.
type Store struct {
	dir string
}

// NewStore creates a cover store at the specified directory.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve covers dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the absolute covers directory.
func (s *Store) Dir() string {
	return s.dir
}

// Extension returns the lower-cased extension of name when it is a supported
// image type, DefaultExtension otherwise.
func Extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if allowedExtensions[ext] {
		return ext
	}
	return DefaultExtension
}

// Filename builds the cover filename for a book: the id keeps it unique, the
// title keeps it readable.
func Filename(id uint, title, ext string) string {
	return fmt.Sprintf("%d_%s%s", id, utils.TitleSlug(title), ext)
}

// Save writes the image read from r as the cover of book id. The original
// name only contributes its extension. The file is written atomically and
// the absolute path is returned.
func (s *Store) Save(id uint, title, name string, r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrEmptyUpload
		}
		return "", fmt.Errorf("read cover: %w", err)
	}

	path := filepath.Join(s.dir, Filename(id, title, Extension(name)))
	if err := atomic.WriteFile(path, br); err != nil {
		return "", fmt.Errorf("write cover: %w", err)
	}
	// atomic.WriteFile creates the temp file with 0600
	if err := os.Chmod(path, 0o644); err != nil {
		return "", fmt.Errorf("chmod cover: %w", err)
	}

	return path, nil
}

// SaveFile copies the image at srcPath as the cover of book id.
func (s *Store) SaveFile(id uint, title, srcPath string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open cover source: %w", err)
	}
	defer f.Close()

	return s.Save(id, title, srcPath, f)
}

// Remove deletes the cover at path. A missing file is not an error; the
// returned flag reports whether a file was actually removed.
func (s *Store) Remove(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
