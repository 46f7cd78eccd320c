package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/library-manager/internal/library"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	for _, value := range []string{"abc", "-1", ""} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: value}}

		id, ok := parseIDParam(c, "id")

		assert.False(t, ok, value)
		assert.Equal(t, uint(0), id)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid id")
	}
}

func TestParseFormID(t *testing.T) {
	tests := []struct {
		value string
		id    uint
		ok    bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"", 0, false},
		{"seven", 0, false},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		form := url.Values{"book_id": {tt.value}}
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		id, ok := parseFormID(c, "book_id")

		assert.Equal(t, tt.ok, ok, tt.value)
		assert.Equal(t, tt.id, id, tt.value)
	}
}

func TestRespondValidationError(t *testing.T) {
	t.Run("validation error lists fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondValidationError(c, &library.ValidationError{Fields: map[string]string{"Title": "Title is a required field"}}, "test")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"validation_failed"`)
		assert.Contains(t, w.Body.String(), "Title is a required field")
	})

	t.Run("other errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondValidationError(c, errors.New("disk full"), "test")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "disk full")
	})
}
