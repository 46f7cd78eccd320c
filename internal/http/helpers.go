package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-manager/internal/library"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // per-field validation messages
}

// Error codes
const (
	codeValidationFailed = "validation_failed"
	codeTooLarge         = "upload_too_large"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondValidationError sends the field messages of a rejected book as a 400.
// Errors that are not validation failures are treated as internal errors.
func respondValidationError(c *gin.Context, err error, context string) {
	var verr *library.ValidationError
	if !errors.As(err, &verr) {
		respondInternalError(c, err, context)
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   verr.Error(),
		Code:    codeValidationFailed,
		Details: verr.Fields,
	})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseFormID reads an unsigned integer ID from a submitted form field.
func parseFormID(c *gin.Context, field string) (uint, bool) {
	id, err := strconv.ParseUint(c.PostForm(field), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
