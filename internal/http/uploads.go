package http

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/library-manager/internal/covers"
	"github.com/mrlokans/library-manager/internal/library"
)

// coverField is the multipart field carrying the cover image.
const coverField = "cover"

// uploadFormSlack covers the text fields and multipart framing around the cover.
const uploadFormSlack = 1 << 20

var errUploadTooLarge = errors.New("cover image is too large")

func uploadTooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("Cover image must be smaller than %d MB", maxBytes>>20)
}

// stagedUpload is a cover upload written to the uploads directory, waiting
// to be copied into the cover store.
type stagedUpload struct {
	path string
}

// source returns the cover source for the library, or nil when nothing was uploaded.
func (s *stagedUpload) source() *library.CoverSource {
	if s == nil {
		return nil
	}
	return library.CoverFromPath(s.path)
}

// discard removes the staged file. Leftovers are swept by the scheduler.
func (s *stagedUpload) discard() {
	if s == nil {
		return
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Printf("Error removing staged upload %s: %v", s.path, err)
	}
}

// stageCoverUpload saves the request's cover file under dir with a random
// name. It returns nil when the request carries no cover.
func stageCoverUpload(c *gin.Context, dir string, maxBytes int64) (*stagedUpload, error) {
	header, err := c.FormFile(coverField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cover upload: %w", err)
	}
	if header.Filename == "" || header.Size == 0 {
		return nil, nil
	}
	if header.Size > maxBytes {
		return nil, errUploadTooLarge
	}
	return saveStaged(c, header, dir)
}

func saveStaged(c *gin.Context, header *multipart.FileHeader, dir string) (*stagedUpload, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+covers.Extension(header.Filename))
	if err := c.SaveUploadedFile(header, path); err != nil {
		return nil, fmt.Errorf("stage cover upload: %w", err)
	}
	return &stagedUpload{path: path}, nil
}
