// Package library is the record store of the catalogue: it validates and
// persists books, manages their cover images, and answers list, search and
// statistics queries for the web and terminal front ends.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/mrlokans/library-manager/internal/config"
	"github.com/mrlokans/library-manager/internal/covers"
	"github.com/mrlokans/library-manager/internal/database"
	"github.com/mrlokans/library-manager/internal/database/books"
	"github.com/mrlokans/library-manager/internal/entities"
)

// Outcome classifies the result of adding a book.
type Outcome string

const (
	OutcomeAdded         Outcome = "added"
	OutcomeCoverDegraded Outcome = "added_without_cover"
	OutcomeFailed        Outcome = "failed"
)

// NewBook is a book submission before it receives an id.
type NewBook struct {
	Title      string `validate:"required"`
	Author     string `validate:"required"`
	Year       int    `validate:"min=1000,max=9999"`
	Genre      string `validate:"required"`
	ReadStatus bool
}

func (nb NewBook) normalized() NewBook {
	nb.Title = strings.TrimSpace(nb.Title)
	nb.Author = strings.TrimSpace(nb.Author)
	nb.Genre = strings.TrimSpace(nb.Genre)
	return nb
}

// CoverSource is an image to persist as a book cover: either a file on disk
// or an in-memory upload with its original name.
type CoverSource struct {
	Name   string
	Reader io.Reader
	Path   string
}

// CoverFromPath uses the image at path as the cover source.
func CoverFromPath(path string) *CoverSource {
	return &CoverSource{Name: path, Path: path}
}

// CoverFromUpload uses an uploaded stream as the cover source. Only the
// extension of name is kept.
func CoverFromUpload(name string, r io.Reader) *CoverSource {
	return &CoverSource{Name: name, Reader: r}
}

// AddResult reports what Add persisted.
type AddResult struct {
	Book     entities.Book
	Outcome  Outcome
	CoverErr error // set when Outcome is OutcomeCoverDegraded
}

// RemoveResult reports what Remove deleted.
type RemoveResult struct {
	ID           uint
	Found        bool // false when no row had the id
	CoverRemoved bool
	CoverErr     error // cover deletion failure; the row is still removed
}

// Library is the record store for books and their covers.
type Library struct {
	repo      *books.Repository
	covers    *covers.Store
	validator *bookValidator
	db        *database.Database
}

// New builds a library over an initialised repository and cover store.
func New(repo *books.Repository, coverStore *covers.Store) (*Library, error) {
	v, err := newBookValidator()
	if err != nil {
		return nil, err
	}
	return &Library{repo: repo, covers: coverStore, validator: v}, nil
}

// Open initialises the database and cover directory named by cfg and returns
// a library that owns them. Call Close when done.
func Open(cfg *config.Config) (*Library, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	coverStore, err := covers.NewStore(cfg.Storage.CoversDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	lib, err := New(books.NewRepository(db.DB), coverStore)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	lib.db = db
	return lib, nil
}

// Database returns the underlying database when the library was opened with Open.
func (l *Library) Database() *database.Database {
	return l.db
}

// Close releases the database opened by Open.
func (l *Library) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Validate checks a submission without storing it.
func (l *Library) Validate(nb NewBook) error {
	return l.validator.check(nb.normalized())
}

// Add stores a new book. When a cover is given it is saved under a filename
// keyed by the new id. A cover that cannot be saved does not fail the call:
// the book is stored without one and the result says so.
func (l *Library) Add(ctx context.Context, nb NewBook, cover *CoverSource) (AddResult, error) {
	nb = nb.normalized()
	if err := l.validator.check(nb); err != nil {
		return AddResult{Outcome: OutcomeFailed}, err
	}

	book := entities.Book{
		Title:      nb.Title,
		Author:     nb.Author,
		Year:       nb.Year,
		Genre:      nb.Genre,
		ReadStatus: nb.ReadStatus,
	}
	result := AddResult{Outcome: OutcomeAdded}

	err := l.repo.WithContext(ctx).Transaction(func(tx *books.Repository) error {
		if err := tx.Create(&book); err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		if cover == nil {
			return nil
		}

		path, err := l.saveCover(book, cover)
		if err != nil {
			log.Printf("Error saving cover for book %d (%s): %v", book.ID, book.Title, err)
			result.Outcome = OutcomeCoverDegraded
			result.CoverErr = err
			return nil
		}
		book.CoverImage = &path

		if err := tx.SetCover(book.ID, &path); err != nil {
			return fmt.Errorf("record cover path: %w", err)
		}
		return nil
	})
	if err != nil {
		if book.CoverImage != nil {
			if _, rmErr := l.covers.Remove(*book.CoverImage); rmErr != nil {
				log.Printf("Error removing orphaned cover %s: %v", *book.CoverImage, rmErr)
			}
		}
		return AddResult{Outcome: OutcomeFailed}, err
	}

	result.Book = book
	log.Printf("Book '%s' added successfully (id=%d, outcome=%s)", book.Title, book.ID, result.Outcome)
	return result, nil
}

func (l *Library) saveCover(book entities.Book, cover *CoverSource) (string, error) {
	if cover.Reader != nil {
		return l.covers.Save(book.ID, book.Title, cover.Name, cover.Reader)
	}
	if cover.Path == "" {
		return "", errors.New("cover source has neither a path nor content")
	}
	return l.covers.SaveFile(book.ID, book.Title, cover.Path)
}

// Remove deletes a book and, first, its cover file if one exists. Removing an
// unknown id succeeds with Found set to false.
func (l *Library) Remove(ctx context.Context, id uint) (RemoveResult, error) {
	repo := l.repo.WithContext(ctx)
	result := RemoveResult{ID: id}

	path, err := repo.CoverPath(id)
	if err != nil {
		return result, fmt.Errorf("look up cover: %w", err)
	}
	if path != nil {
		removed, err := l.covers.Remove(*path)
		if err != nil {
			log.Printf("Error removing cover %s for book %d: %v", *path, id, err)
			result.CoverErr = err
		}
		result.CoverRemoved = removed
	}

	n, err := repo.Delete(id)
	if err != nil {
		return result, fmt.Errorf("delete book: %w", err)
	}
	result.Found = n > 0

	log.Printf("Book ID %d removed (found=%t, cover_removed=%t)", id, result.Found, result.CoverRemoved)
	return result, nil
}

// List returns every book in id order.
func (l *Library) List(ctx context.Context) ([]entities.Book, error) {
	list, err := l.repo.WithContext(ctx).List()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return list, nil
}

// Get returns a single book.
func (l *Library) Get(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := l.repo.WithContext(ctx).GetByID(id)
	if errors.Is(err, books.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// Search lists the books matching query (see Matches).
func (l *Library) Search(ctx context.Context, query string) ([]entities.Book, error) {
	all, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, query), nil
}

// Stats aggregates the whole collection.
func (l *Library) Stats(ctx context.Context) (Stats, error) {
	all, err := l.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(all), nil
}
