package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/mrlokans/library-manager/internal/library"
)

// errCancelled ends a page's prompts and returns to the menu.
var errCancelled = errors.New("cancelled")

// prompter reads one line of input. *liner.State implements it.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// pages are the shell's menu entries in display order.
var pages = []struct {
	name, title string
}{
	{"home", "Home"},
	{"add", "Add Book"},
	{"search", "Search Books"},
	{"stats", "Statistics"},
	{"remove", "Remove Book"},
	{"exit", "Exit"},
}

// historyFile returns the path to the shell history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".library_manager_history")
}

func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse the library page by page in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)
			line.SetCompleter(completePage)

			if f, err := os.Open(historyFile()); err == nil {
				_, _ = line.ReadHistory(f)
				f.Close()
			}
			defer func() {
				if path := historyFile(); path != "" {
					if f, err := os.Create(path); err == nil {
						_, _ = line.WriteHistory(f)
						f.Close()
					}
				}
			}()

			sh := &shell{lib: lib, in: line, out: cmd.OutOrStdout(), width: terminalWidth()}
			return sh.run(cmd.Context())
		},
	}
}

func completePage(line string) []string {
	var matches []string
	for _, p := range pages {
		if strings.HasPrefix(p.name, strings.ToLower(line)) {
			matches = append(matches, p.name)
		}
	}
	return matches
}

// shell is the interactive page loop.
type shell struct {
	lib   *library.Library
	in    prompter
	out   io.Writer
	width int
}

func (s *shell) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Library Manager. Type a page name or number, 'help' for the menu.")
	s.printMenu()
	if err := s.home(ctx); err != nil {
		return err
	}

	for {
		line, err := s.in.Prompt("library> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out, "\nExiting application...")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.in.AppendHistory(line)

		page := resolvePage(line)
		if page == "exit" {
			fmt.Fprintln(s.out, "Exiting application...")
			return nil
		}

		if err := s.show(ctx, page, line); err != nil {
			if errors.Is(err, errCancelled) {
				fmt.Fprintln(s.out, "Cancelled.")
				continue
			}
			return err
		}
	}
}

// resolvePage maps a menu number, page name or unique prefix to a page name.
func resolvePage(input string) string {
	input = strings.ToLower(input)
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(pages) {
		return pages[n-1].name
	}
	switch input {
	case "quit", "q":
		return "exit"
	case "help", "?", "menu":
		return "help"
	}
	if matches := completePage(input); len(matches) == 1 {
		return matches[0]
	}
	return ""
}

func (s *shell) show(ctx context.Context, page, input string) error {
	switch page {
	case "home":
		return s.home(ctx)
	case "add":
		return s.add(ctx)
	case "search":
		return s.search(ctx)
	case "stats":
		return s.stats(ctx)
	case "remove":
		return s.remove(ctx)
	case "help":
		s.printMenu()
	default:
		fmt.Fprintf(s.out, "Unknown page: %s (type 'help' for the menu)\n", input)
	}
	return nil
}

func (s *shell) printMenu() {
	headingColor.Fprintln(s.out, "Pages:")
	for i, p := range pages {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, p.title)
	}
}

// ask prompts for one value. Aborting the prompt cancels the page.
func (s *shell) ask(prompt string) (string, error) {
	answer, err := s.in.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", errCancelled
		}
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (s *shell) home(ctx context.Context) error {
	books, err := s.lib.List(ctx)
	if err != nil {
		return err
	}
	headingColor.Fprintln(s.out, "\nMy Library")
	printBookTable(s.out, books)
	return nil
}

func (s *shell) add(ctx context.Context) error {
	headingColor.Fprintln(s.out, "\nAdd Book")

	var nb library.NewBook
	var err error
	if nb.Title, err = s.ask("Title: "); err != nil {
		return err
	}
	if nb.Author, err = s.ask("Author: "); err != nil {
		return err
	}
	yearText, err := s.ask(fmt.Sprintf("Year (%d-%d): ", library.MinYear, library.MaxYear))
	if err != nil {
		return err
	}
	if nb.Year, err = strconv.Atoi(yearText); err != nil {
		errorColor.Fprintf(s.out, "Year must be a whole number between %d and %d\n", library.MinYear, library.MaxYear)
		return nil
	}
	if nb.Genre, err = s.ask("Genre: "); err != nil {
		return err
	}
	read, err := s.ask("Read? [y/N]: ")
	if err != nil {
		return err
	}
	nb.ReadStatus = isYes(read)
	coverPath, err := s.ask("Cover image path (optional): ")
	if err != nil {
		return err
	}

	var cover *library.CoverSource
	if coverPath != "" {
		cover = library.CoverFromPath(coverPath)
	}

	result, err := s.lib.Add(ctx, nb, cover)
	if errors.Is(err, library.ErrValidation) {
		printValidationError(s.out, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("add book: %w", err)
	}
	printAddResult(s.out, result)
	return nil
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

func (s *shell) search(ctx context.Context) error {
	headingColor.Fprintln(s.out, "\nSearch Books")
	query, err := s.ask("Search: ")
	if err != nil {
		return err
	}
	books, err := s.lib.Search(ctx, query)
	if err != nil {
		return err
	}
	printSearchResults(s.out, books)
	return nil
}

func (s *shell) stats(ctx context.Context) error {
	headingColor.Fprintln(s.out, "\nStatistics")
	stats, err := s.lib.Stats(ctx)
	if err != nil {
		return err
	}
	printStats(s.out, stats, s.width)
	return nil
}

func (s *shell) remove(ctx context.Context) error {
	headingColor.Fprintln(s.out, "\nRemove Book")
	books, err := s.lib.List(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(s.out, "No books to remove.")
		return nil
	}
	for _, b := range books {
		fmt.Fprintf(s.out, "  [%d] %s\n", b.ID, b.DisplayName())
	}

	answer, err := s.ask("Book id to remove: ")
	if err != nil {
		return err
	}
	id, err := strconv.ParseUint(answer, 10, 32)
	if err != nil {
		errorColor.Fprintf(s.out, "Invalid book id %q\n", answer)
		return nil
	}

	book, result, err := removeBook(ctx, s.lib, uint(id))
	if err != nil {
		return err
	}
	printRemoveResult(s.out, book, result)
	return nil
}
