package http

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-manager/internal/config"
	"github.com/mrlokans/library-manager/internal/library"
	"github.com/mrlokans/library-manager/internal/session"
)

// testEnv is a router over a real library in a temporary directory.
type testEnv struct {
	lib        *library.Library
	router     *gin.Engine
	cfg        RouterConfig
	uploadsDir string
	exits      int
}

func setupTestLibrary(t *testing.T) (*library.Library, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	lib, err := library.Open(&config.Config{
		Database: config.Database{Path: filepath.Join(dir, "library.db")},
		Storage:  config.Storage{CoversDir: filepath.Join(dir, "covers")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib, dir
}

func setupTestEnv(t *testing.T, modify ...func(*RouterConfig)) *testEnv {
	t.Helper()

	lib, dir := setupTestLibrary(t)

	sqlDB, err := lib.Database().DB.DB()
	require.NoError(t, err)
	sessions, err := session.NewManager(sqlDB, false)
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	env := &testEnv{lib: lib, uploadsDir: filepath.Join(dir, "uploads")}
	env.cfg = RouterConfig{
		Books:            lib,
		Database:         lib.Database(),
		Sessions:         sessions,
		UploadsDir:       env.uploadsDir,
		DefaultCoverPath: filepath.Join(dir, "default_cover.png"),
		OnExit:           func() { env.exits++ },
		Version:          "test",
	}
	for _, m := range modify {
		m(&env.cfg)
	}
	env.router = NewRouter(env.cfg)
	return env
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return env.do(req)
}

func (env *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return env.do(req)
}

// multipartBody builds a form with an optional cover file.
func multipartBody(t *testing.T, fields map[string]string, coverName string, cover []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if coverName != "" {
		fw, err := mw.CreateFormFile(coverField, coverName)
		require.NoError(t, err)
		_, err = fw.Write(cover)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func duneForm() map[string]string {
	return map[string]string{
		"title":  "Dune",
		"author": "Herbert",
		"year":   "1965",
		"genre":  "Sci-Fi",
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "library_session" {
			return c
		}
	}
	t.Fatal("response carries no session cookie")
	return nil
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// stagedFiles lists the files waiting in the uploads directory.
func stagedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
