package library

import (
	"strconv"
	"strings"

	"github.com/mrlokans/library-manager/internal/entities"
)

// Matches reports whether query occurs, ignoring case, in the book's title,
// author, genre, year or status label ("Read"/"Unread"). Ids and cover paths
// are not searched. A blank query matches every book.
func Matches(book entities.Book, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{book.Title, book.Author, book.Genre, strconv.Itoa(book.Year), book.StatusLabel()} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the books matching query, keeping their order.
func Filter(all []entities.Book, query string) []entities.Book {
	matched := make([]entities.Book, 0, len(all))
	for _, b := range all {
		if Matches(b, query) {
			matched = append(matched, b)
		}
	}
	return matched
}
