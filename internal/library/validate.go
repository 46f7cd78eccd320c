package library

import (
	"errors"
	"fmt"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// Bounds for a publication year.
const (
	MinYear = 1000
	MaxYear = 9999
)

type bookValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newBookValidator() (*bookValidator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	return &bookValidator{validate: validate, trans: trans}, nil
}

// check returns a *ValidationError describing every failing field, or nil.
func (v *bookValidator) check(book NewBook) error {
	err := v.validate.Struct(book)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate book: %w", err)
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrors))}
	for _, fe := range fieldErrors {
		verr.Fields[fe.Field()] = fe.Translate(v.trans)
	}
	return verr
}
