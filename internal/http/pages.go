package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-manager/internal/library"
	"github.com/mrlokans/library-manager/internal/session"
)

// bookForm holds submitted Add Book values for re-rendering the form.
type bookForm struct {
	Title      string
	Author     string
	Year       string
	Genre      string
	ReadStatus bool
}

// newBook converts the form. The returned message is set when the year is
// not a number.
func (f bookForm) newBook() (library.NewBook, string) {
	nb := library.NewBook{
		Title:      f.Title,
		Author:     f.Author,
		Genre:      f.Genre,
		ReadStatus: f.ReadStatus,
	}
	year, err := strconv.Atoi(strings.TrimSpace(f.Year))
	if err != nil {
		return nb, fmt.Sprintf("Year must be a whole number between %d and %d", library.MinYear, library.MaxYear)
	}
	nb.Year = year
	return nb, ""
}

func readBookForm(c *gin.Context) bookForm {
	return bookForm{
		Title:      c.PostForm("title"),
		Author:     c.PostForm("author"),
		Year:       c.PostForm("year"),
		Genre:      c.PostForm("genre"),
		ReadStatus: isChecked(c.PostForm("read_status")),
	}
}

func isChecked(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// PagesController serves the HTML pages: Home, Add Book, Search, Statistics,
// Remove Book and Exit.
type PagesController struct {
	books      BookStore
	sessions   *session.Manager
	uploadsDir string
	maxUpload  int64
	onExit     func()
	exitOnce   sync.Once
}

func NewPagesController(books BookStore, sessions *session.Manager, uploadsDir string, maxUpload int64, onExit func()) *PagesController {
	return &PagesController{
		books:      books,
		sessions:   sessions,
		uploadsDir: uploadsDir,
		maxUpload:  maxUpload,
		onExit:     onExit,
	}
}

// render adds the navigation, flash and CSRF values shared by every page.
func (pc *PagesController) render(c *gin.Context, status int, name, title string, data gin.H) {
	data["Title"] = title
	data["Active"] = name
	data["CSRFField"] = csrfTokenField(c)
	if e := c.Query("error"); e != "" {
		data["Error"] = e
	}
	if pc.sessions != nil {
		if flash, ok := pc.sessions.PopFlash(c.Request.Context()); ok {
			data["Flash"] = &flash
		}
	}
	c.HTML(status, name, data)
}

func (pc *PagesController) flash(c *gin.Context, kind, message string) {
	if pc.sessions == nil {
		return
	}
	pc.sessions.AddFlash(c.Request.Context(), kind, message)
}

func (pc *PagesController) renderError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.String(http.StatusInternalServerError, "Error %s. Please try again.", context)
}

// Home lists every book as a card.
// GET /
func (pc *PagesController) Home(c *gin.Context) {
	all, err := pc.books.List(c.Request.Context())
	if err != nil {
		pc.renderError(c, err, "loading books")
		return
	}
	pc.render(c, http.StatusOK, "home", "Home", gin.H{"Books": all})
}

// AddForm shows the empty Add Book form.
// GET /books/new
func (pc *PagesController) AddForm(c *gin.Context) {
	pc.renderAddForm(c, http.StatusOK, bookForm{}, nil)
}

func (pc *PagesController) renderAddForm(c *gin.Context, status int, form bookForm, errs []string) {
	pc.render(c, status, "add", "Add Book", gin.H{
		"Form":    form,
		"Errors":  errs,
		"MinYear": library.MinYear,
		"MaxYear": library.MaxYear,
	})
}

// AddBook validates the form, stages the cover upload and stores the book.
// POST /books
func (pc *PagesController) AddBook(c *gin.Context) {
	form := readBookForm(c)

	nb, yearMsg := form.newBook()
	if errs := pc.formErrors(nb, yearMsg); len(errs) > 0 {
		pc.renderAddForm(c, http.StatusBadRequest, form, errs)
		return
	}

	staged, stageErr := stageCoverUpload(c, pc.uploadsDir, pc.maxUpload)
	if errors.Is(stageErr, errUploadTooLarge) {
		pc.renderAddForm(c, http.StatusRequestEntityTooLarge, form, []string{pc.tooLargeMessage()})
		return
	}
	if stageErr != nil {
		// The book is still stored, just without a cover
		log.Printf("Error staging cover upload: %v", stageErr)
	}
	defer staged.discard()

	result, err := pc.books.Add(c.Request.Context(), nb, staged.source())
	if err != nil {
		var verr *library.ValidationError
		if errors.As(err, &verr) {
			pc.renderAddForm(c, http.StatusBadRequest, form, verr.Messages())
			return
		}
		pc.renderError(c, err, "adding book")
		return
	}

	if result.Outcome == library.OutcomeCoverDegraded || stageErr != nil {
		pc.flash(c, session.FlashWarning, fmt.Sprintf("Book '%s' added, but its cover image could not be saved.", result.Book.Title))
	} else {
		pc.flash(c, session.FlashSuccess, fmt.Sprintf("Book '%s' added successfully!", result.Book.Title))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (pc *PagesController) tooLargeMessage() string {
	return uploadTooLargeMessage(pc.maxUpload)
}

// formErrors merges the year parse error with the store's validation
// messages. An unparseable year replaces the range message.
func (pc *PagesController) formErrors(nb library.NewBook, yearMsg string) []string {
	var errs []string

	err := pc.books.Validate(nb)
	var verr *library.ValidationError
	switch {
	case errors.As(err, &verr):
		for field, msg := range verr.Fields {
			if field == "Year" && yearMsg != "" {
				continue
			}
			errs = append(errs, msg)
		}
		sort.Strings(errs)
	case err != nil:
		errs = append(errs, err.Error())
	}

	if yearMsg != "" {
		errs = append(errs, yearMsg)
	}
	return errs
}

// Search lists the books matching the q parameter.
// GET /search
func (pc *PagesController) Search(c *gin.Context) {
	query, searched := c.GetQuery("q")
	data := gin.H{"Query": query, "Searched": searched}

	if searched {
		found, err := pc.books.Search(c.Request.Context(), query)
		if err != nil {
			pc.renderError(c, err, "searching books")
			return
		}
		data["Books"] = found
	}
	pc.render(c, http.StatusOK, "search", "Search Books", data)
}

// Stats shows read counts and the genre bar chart.
// GET /stats
func (pc *PagesController) Stats(c *gin.Context) {
	stats, err := pc.books.Stats(c.Request.Context())
	if err != nil {
		pc.renderError(c, err, "loading statistics")
		return
	}
	pc.render(c, http.StatusOK, "stats", "Statistics", gin.H{
		"Stats": stats,
		"Chart": buildGenreChart(stats.Genres),
	})
}

// RemoveForm lists the books that can be removed.
// GET /books/remove
func (pc *PagesController) RemoveForm(c *gin.Context) {
	all, err := pc.books.List(c.Request.Context())
	if err != nil {
		pc.renderError(c, err, "loading books")
		return
	}
	pc.render(c, http.StatusOK, "remove", "Remove Book", gin.H{"Books": all})
}

// RemoveBook deletes the selected book and its cover.
// POST /books/remove
func (pc *PagesController) RemoveBook(c *gin.Context) {
	id, ok := parseFormID(c, "book_id")
	if !ok {
		pc.flash(c, session.FlashError, "Please select a book to remove.")
		c.Redirect(http.StatusSeeOther, "/books/remove")
		return
	}

	ctx := c.Request.Context()
	book, err := pc.books.Get(ctx, id)
	if errors.Is(err, library.ErrNotFound) {
		pc.flash(c, session.FlashWarning, "That book is no longer in the library.")
		c.Redirect(http.StatusSeeOther, "/books/remove")
		return
	}
	if err != nil {
		pc.renderError(c, err, "removing book")
		return
	}

	result, err := pc.books.Remove(ctx, id)
	if err != nil {
		pc.renderError(c, err, "removing book")
		return
	}

	if result.CoverErr != nil {
		pc.flash(c, session.FlashWarning, fmt.Sprintf("'%s' removed, but its cover file could not be deleted.", book.DisplayName()))
	} else {
		pc.flash(c, session.FlashSuccess, fmt.Sprintf("'%s' removed successfully!", book.DisplayName()))
	}
	c.Redirect(http.StatusSeeOther, "/books/remove")
}

// ExitPage asks for confirmation before stopping the server.
// GET /exit
func (pc *PagesController) ExitPage(c *gin.Context) {
	pc.render(c, http.StatusOK, "exit", "Exit", gin.H{"Exiting": false})
}

// Exit renders the goodbye page and then asks the server to stop.
// POST /exit
func (pc *PagesController) Exit(c *gin.Context) {
	pc.render(c, http.StatusOK, "exit", "Exit", gin.H{"Exiting": true})
	c.Writer.Flush()

	log.Println("Exit requested from the web interface")
	if pc.onExit != nil {
		pc.exitOnce.Do(pc.onExit)
	}
}
