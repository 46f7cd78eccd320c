package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library-manager/internal/entities"
	"github.com/mrlokans/library-manager/internal/library"
)

// ErrReported marks failures the command has already printed.
var ErrReported = errors.New("command failed")

func newAddCommand(a *app) *cobra.Command {
	var (
		nb    library.NewBook
		cover string
	)

	command := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the library",
		Example: `  library-manager add --title Dune --author "Frank Herbert" --year 1965 --genre Sci-Fi --read
  library-manager add --title Emma --author "Jane Austen" --year 1815 --genre Classic --cover ./emma.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			var source *library.CoverSource
			if cover != "" {
				source = library.CoverFromPath(cover)
			}

			out := cmd.OutOrStdout()
			result, err := lib.Add(cmd.Context(), nb, source)
			if errors.Is(err, library.ErrValidation) {
				printValidationError(cmd.ErrOrStderr(), err)
				return ErrReported
			}
			if err != nil {
				return fmt.Errorf("add book: %w", err)
			}
			printAddResult(out, result)
			return nil
		},
	}

	command.Flags().StringVar(&nb.Title, "title", "", "book title")
	command.Flags().StringVar(&nb.Author, "author", "", "book author")
	command.Flags().IntVar(&nb.Year, "year", 0, fmt.Sprintf("publication year (%d-%d)", library.MinYear, library.MaxYear))
	command.Flags().StringVar(&nb.Genre, "genre", "", "book genre")
	command.Flags().BoolVar(&nb.ReadStatus, "read", false, "mark the book as read")
	command.Flags().StringVar(&cover, "cover", "", "path to a cover image (jpg, jpeg or png)")

	return command
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every book",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			books, err := lib.List(cmd.Context())
			if err != nil {
				return err
			}
			printBookTable(cmd.OutOrStdout(), books)
			return nil
		},
	}
}

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find books by title, author, genre, year or read status",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			books, err := lib.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printSearchResults(cmd.OutOrStdout(), books)
			return nil
		},
	}
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a book and its cover",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			lib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			book, result, err := removeBook(cmd.Context(), lib, uint(id))
			if err != nil {
				return err
			}
			printRemoveResult(cmd.OutOrStdout(), book, result)
			return nil
		},
	}
}

// removeBook looks the book up for the confirmation message and removes it.
func removeBook(ctx context.Context, lib *library.Library, id uint) (*entities.Book, library.RemoveResult, error) {
	book, err := lib.Get(ctx, id)
	if err != nil && !errors.Is(err, library.ErrNotFound) {
		return nil, library.RemoveResult{}, err
	}
	result, err := lib.Remove(ctx, id)
	if err != nil {
		return nil, result, fmt.Errorf("remove book: %w", err)
	}
	return book, result, nil
}

func newStatsCommand(a *app) *cobra.Command {
	var width int

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show read counts and books per genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			stats, err := lib.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if width <= 0 {
				width = terminalWidth()
			}
			printStats(cmd.OutOrStdout(), stats, width)
			return nil
		},
	}

	command.Flags().IntVar(&width, "width", 0, "chart width in columns (default: terminal width)")
	return command
}
