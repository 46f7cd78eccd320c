// Package books provides database operations for the books table.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(123)
package books

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/library-manager/internal/entities"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("book not found")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a database transaction with a repository bound to it.
func (r *Repository) Transaction(fn func(tx *Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Create inserts a new book and fills in its ID.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// SetCover records the cover path for a book. A nil path clears it.
func (r *Repository) SetCover(id uint, path *string) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Update("cover_image", path).Error
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CoverPath returns the recorded cover path for a book. Both a missing book
// and a book without a cover yield nil.
func (r *Repository) CoverPath(id uint) (*string, error) {
	var paths []sql.NullString
	err := r.db.Model(&entities.Book{}).Where("id = ?", id).Limit(1).Pluck("cover_image", &paths).Error
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 || !paths[0].Valid {
		return nil, nil
	}
	return &paths[0].String, nil
}

// Delete removes a book row. Deleting an unknown ID is not an error; the
// returned count tells whether a row was removed.
func (r *Repository) Delete(id uint) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}

// List returns every book ordered by primary key.
func (r *Repository) List() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

// Count returns the number of stored books.
func (r *Repository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entities.Book{}).Count(&n).Error
	return n, err
}

// WithContext returns a repository whose queries honour ctx.
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
