package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCSRFSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.NotEmpty(t, w.Header().Get("Permissions-Policy"))
}

func TestCSRF_FormWithoutTokenRejected(t *testing.T) {
	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.CSRFSecret = testCSRFSecret })

	w := env.postForm("/books/remove", url.Values{"book_id": {"1"}})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Form Expired")
	assert.Equal(t, 0, env.exits)
}

func TestCSRF_ExitWithoutTokenDoesNotStopServer(t *testing.T) {
	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.CSRFSecret = testCSRFSecret })

	req := httptest.NewRequest(http.MethodPost, "/exit", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/exit")
	w := env.do(req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=Session+expired")
	assert.Equal(t, 0, env.exits)
}

func TestCSRF_FormsCarryToken(t *testing.T) {
	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.CSRFSecret = testCSRFSecret })

	w := env.get("/books/new")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="gorilla.csrf.Token"`)
}

func TestCSRF_APISkipsCheck(t *testing.T) {
	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.CSRFSecret = testCSRFSecret })

	w := postJSON(env, "/api/books", `{"title":"Dune","author":"Herbert","year":1965,"genre":"Sci-Fi"}`)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCSRFTokenField_EmptyWithoutToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, string(csrfTokenField(c)))
}

func TestUploadLimit_OversizedFormRejectedBeforeCSRF(t *testing.T) {
	env := setupTestEnv(t, func(cfg *RouterConfig) {
		cfg.CSRFSecret = testCSRFSecret
		cfg.MaxUploadBytes = 1 << 20
	})

	w := postMultipart(env, t, "/books", duneForm(), "big.png", make([]byte, 3<<20))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Upload Too Large")
	assert.NotContains(t, w.Body.String(), "Form Expired")
	assert.Empty(t, stagedFiles(t, env.uploadsDir))
}

func TestUploadLimit_SmallBodyPasses(t *testing.T) {
	router := gin.New()
	router.Use(UploadLimitMiddleware(1 << 20))
	router.POST("/echo", func(c *gin.Context) { c.String(http.StatusOK, c.PostForm("title")) })

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("title=Dune"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dune", w.Body.String())
}
