package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/mrlokans/library-manager/internal/entities"
	"github.com/mrlokans/library-manager/internal/library"
)

const defaultTerminalWidth = 80

var (
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	barColor     = color.New(color.FgCyan)
	headingColor = color.New(color.Bold)
)

// terminalWidth returns the width of stdout when it is a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTerminalWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

func printBookTable(w io.Writer, books []entities.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "Your library is empty.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tGENRE\tSTATUS\tCOVER")
	for _, b := range books {
		cover := "-"
		if b.HasCover() {
			cover = *b.CoverImage
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.Year, b.Genre, b.StatusLabel(), cover)
	}
	tw.Flush()
}

func printSearchResults(w io.Writer, books []entities.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	for _, b := range books {
		fmt.Fprintf(w, "%s by %s (%d)\n", b.Title, b.Author, b.Year)
	}
}

func printAddResult(w io.Writer, result library.AddResult) {
	if result.Outcome == library.OutcomeCoverDegraded {
		warningColor.Fprintf(w, "Book '%s' added (id %d), but its cover image could not be saved: %v\n",
			result.Book.Title, result.Book.ID, result.CoverErr)
		return
	}
	successColor.Fprintf(w, "Book '%s' added successfully! (id %d)\n", result.Book.Title, result.Book.ID)
}

func printRemoveResult(w io.Writer, book *entities.Book, result library.RemoveResult) {
	if !result.Found || book == nil {
		warningColor.Fprintf(w, "No book with id %d.\n", result.ID)
		return
	}
	if result.CoverErr != nil {
		warningColor.Fprintf(w, "'%s' removed, but its cover file could not be deleted: %v\n", book.DisplayName(), result.CoverErr)
		return
	}
	successColor.Fprintf(w, "'%s' removed successfully!\n", book.DisplayName())
}

// printStats writes the counts and a horizontal bar per genre fitted to width.
func printStats(w io.Writer, stats library.Stats, width int) {
	if stats.Empty() {
		warningColor.Fprintln(w, "No books available for statistics.")
		return
	}

	fmt.Fprintf(w, "Total books: %d\n", stats.Total)
	fmt.Fprintf(w, "Read: %d  Unread: %d\n\n", stats.Read, stats.Unread)
	headingColor.Fprintln(w, "Books per genre")

	labelWidth := 0
	for _, g := range stats.Genres {
		if n := len([]rune(g.Genre)); n > labelWidth {
			labelWidth = n
		}
	}
	countWidth := len(fmt.Sprint(stats.MaxGenreCount()))

	// label, space, bar, space, count
	barSpace := width - labelWidth - countWidth - 2
	if barSpace < 1 {
		barSpace = 1
	}

	for _, g := range stats.Genres {
		n := g.Count * barSpace / stats.MaxGenreCount()
		if n < 1 {
			n = 1
		}
		fmt.Fprintf(w, "%-*s ", labelWidth, g.Genre)
		barColor.Fprint(w, strings.Repeat("█", n))
		fmt.Fprintf(w, " %d\n", g.Count)
	}
}

func printValidationError(w io.Writer, err error) {
	var verr *library.ValidationError
	if errors.As(err, &verr) {
		errorColor.Fprintln(w, "Cannot add book:")
		for _, msg := range verr.Messages() {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
		return
	}
	errorColor.Fprintf(w, "Error: %v\n", err)
}
