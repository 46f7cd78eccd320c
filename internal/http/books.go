package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-manager/internal/library"
)

// bookRequest is the body of POST /api/books, as JSON or multipart form.
type bookRequest struct {
	Title      string `json:"title" form:"title"`
	Author     string `json:"author" form:"author"`
	Year       int    `json:"year" form:"year"`
	Genre      string `json:"genre" form:"genre"`
	ReadStatus bool   `json:"read_status" form:"read_status"`
}

// addBookResponse reports the outcome of an API add.
type addBookResponse struct {
	Book       any             `json:"book"`
	Outcome    library.Outcome `json:"outcome"`
	CoverError string          `json:"cover_error,omitempty"`
}

type removeBookResponse struct {
	ID           uint `json:"id"`
	Found        bool `json:"found"`
	CoverRemoved bool `json:"cover_removed"`
}

type BooksController struct {
	books      BookStore
	uploadsDir string
	maxUpload  int64
}

func NewBooksController(books BookStore, uploadsDir string, maxUpload int64) *BooksController {
	return &BooksController{
		books:      books,
		uploadsDir: uploadsDir,
		maxUpload:  maxUpload,
	}
}

// GetAllBooks returns every book.
// GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	all, err := controller.books.List(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": all, "count": len(all)})
}

// GetBook returns one book.
// GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.Get(c.Request.Context(), id)
	if errors.Is(err, library.ErrNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// CreateBook adds a book. Multipart requests may include a cover file.
// POST /api/books
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	nb := library.NewBook{
		Title:      req.Title,
		Author:     req.Author,
		Year:       req.Year,
		Genre:      req.Genre,
		ReadStatus: req.ReadStatus,
	}
	if err := controller.books.Validate(nb); err != nil {
		respondValidationError(c, err, "validate book")
		return
	}

	staged, stageErr := stageCoverUpload(c, controller.uploadsDir, controller.maxUpload)
	if errors.Is(stageErr, errUploadTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: stageErr.Error(), Code: codeTooLarge})
		return
	}
	if stageErr != nil {
		log.Printf("Error staging cover upload: %v", stageErr)
	}
	defer staged.discard()

	result, err := controller.books.Add(c.Request.Context(), nb, staged.source())
	if err != nil {
		respondValidationError(c, err, "add book")
		return
	}

	resp := addBookResponse{Book: result.Book, Outcome: result.Outcome}
	if result.CoverErr != nil {
		resp.CoverError = result.CoverErr.Error()
	} else if stageErr != nil {
		resp.Outcome = library.OutcomeCoverDegraded
		resp.CoverError = stageErr.Error()
	}
	respondCreated(c, resp)
}

// DeleteBook removes a book and its cover. Unknown ids succeed with found=false.
// DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := controller.books.Remove(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "remove book")
		return
	}
	c.JSON(http.StatusOK, removeBookResponse{
		ID:           result.ID,
		Found:        result.Found,
		CoverRemoved: result.CoverRemoved,
	})
}

// SearchBooks returns the books matching q.
// GET /api/books/search?q=
func (controller *BooksController) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	found, err := controller.books.Search(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"query": query, "books": found, "count": len(found)})
}

// GetStats returns collection statistics.
// GET /api/stats
func (controller *BooksController) GetStats(c *gin.Context) {
	stats, err := controller.books.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}
	c.IndentedJSON(http.StatusOK, stats)
}
