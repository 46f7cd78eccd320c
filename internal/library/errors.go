package library

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidation wraps every rejected book submission.
	ErrValidation = errors.New("invalid book")
	// ErrNotFound is returned when a book id matches no record.
	ErrNotFound = errors.New("book not found")
)

// ValidationError lists the problems with a submitted book, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages(), "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Messages returns the field messages in a stable order.
func (e *ValidationError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return msgs
}
