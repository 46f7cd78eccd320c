package http

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-manager/internal/library"
)

// CoversController serves book covers and the placeholder image.
type CoversController struct {
	books            BookStore
	defaultCoverPath string
}

// NewCoversController creates a new CoversController.
func NewCoversController(books BookStore, defaultCoverPath string) *CoversController {
	return &CoversController{
		books:            books,
		defaultCoverPath: defaultCoverPath,
	}
}

// GetCover serves the cover of a book, or the default cover when it has
// none or the file has gone missing.
// GET /covers/:id
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.books.Get(c.Request.Context(), id)
	if errors.Is(err, library.ErrNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get cover")
		return
	}

	if book.HasCover() && fileExists(*book.CoverImage) {
		c.File(*book.CoverImage)
		return
	}
	cc.DefaultCover(c)
}

// DefaultCover serves the configured placeholder, falling back to a
// built-in SVG.
// GET /static/default-cover
func (cc *CoversController) DefaultCover(c *gin.Context) {
	if cc.defaultCoverPath != "" && fileExists(cc.defaultCoverPath) {
		c.File(cc.defaultCoverPath)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", defaultCoverSVG)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
