package http

import (
	"context"

	"github.com/mrlokans/library-manager/internal/entities"
	"github.com/mrlokans/library-manager/internal/library"
)

// BookStore is the record store behind every page and API endpoint.
// *library.Library satisfies it.
type BookStore interface {
	Validate(nb library.NewBook) error
	Add(ctx context.Context, nb library.NewBook, cover *library.CoverSource) (library.AddResult, error)
	Remove(ctx context.Context, id uint) (library.RemoveResult, error)
	List(ctx context.Context) ([]entities.Book, error)
	Get(ctx context.Context, id uint) (*entities.Book, error)
	Search(ctx context.Context, query string) ([]entities.Book, error)
	Stats(ctx context.Context) (library.Stats, error)
}

var _ BookStore = (*library.Library)(nil)
