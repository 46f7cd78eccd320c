package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-manager/internal/library"
)

func addBook(t *testing.T, env *testEnv, nb library.NewBook) library.AddResult {
	t.Helper()
	result, err := env.lib.Add(context.Background(), nb, nil)
	require.NoError(t, err)
	return result
}

func postMultipart(env *testEnv, t *testing.T, path string, fields map[string]string, coverName string, cover []byte) *httptest.ResponseRecorder {
	body, contentType := multipartBody(t, fields, coverName, cover)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return env.do(req)
}

func TestPages_Navigation(t *testing.T) {
	env := setupTestEnv(t)

	for _, path := range []string{"/", "/books/new", "/search", "/stats", "/books/remove", "/exit"} {
		w := env.get(path)
		require.Equal(t, http.StatusOK, w.Code, path)

		body := w.Body.String()
		for _, link := range []string{"Home", "Add Book", "Search Books", "Statistics", "Remove Book", "Exit"} {
			assert.Contains(t, body, link, "%s should link to %s", path, link)
		}
	}
}

func TestPages_HomeEmpty(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get("/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your library is empty")
}

func TestPages_HomeListsBooks(t *testing.T) {
	env := setupTestEnv(t)
	dune := addBook(t, env, library.NewBook{Title: "Dune", Author: "Herbert", Year: 1965, Genre: "Sci-Fi"})
	addBook(t, env, library.NewBook{Title: "Emma", Author: "Austen", Year: 1815, Genre: "Classic", ReadStatus: true})

	w := env.get("/")

	body := w.Body.String()
	assert.Contains(t, body, "Dune")
	assert.Contains(t, body, "Herbert")
	assert.Contains(t, body, "1965")
	assert.Contains(t, body, "Unread")
	assert.Contains(t, body, "badge-read")
	assert.Contains(t, body, `src="/covers/`+itoa(dune.Book.ID)+`"`)
}

func TestPages_AddBookWithCover(t *testing.T) {
	env := setupTestEnv(t)

	fields := duneForm()
	fields["read_status"] = "on"
	w := postMultipart(env, t, "/books", fields, "dune.png", []byte("png bytes"))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	all, err := env.lib.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].ReadStatus)
	require.NotNil(t, all[0].CoverImage)
	assert.Equal(t, ".png", filepath.Ext(*all[0].CoverImage))
	data, err := os.ReadFile(*all[0].CoverImage)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	staged, err := os.ReadDir(env.uploadsDir)
	require.NoError(t, err)
	assert.Empty(t, staged, "staged upload is removed once the cover is stored")

	home := env.get("/", sessionCookie(t, w))
	assert.Contains(t, home.Body.String(), "Book &#39;Dune&#39; added successfully!")

	again := env.get("/", sessionCookie(t, w))
	assert.NotContains(t, again.Body.String(), "added successfully")
}

func TestPages_AddBookWithoutCover(t *testing.T) {
	env := setupTestEnv(t)

	w := postMultipart(env, t, "/books", duneForm(), "", nil)

	require.Equal(t, http.StatusSeeOther, w.Code)
	all, err := env.lib.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].CoverImage)
	assert.False(t, all[0].ReadStatus)
}

func TestPages_AddBookUnknownExtensionStoredAsJPG(t *testing.T) {
	env := setupTestEnv(t)

	w := postMultipart(env, t, "/books", duneForm(), "dune.gif", []byte("GIF89a"))

	require.Equal(t, http.StatusSeeOther, w.Code)
	all, err := env.lib.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].CoverImage)
	assert.Equal(t, ".jpg", filepath.Ext(*all[0].CoverImage))
}

func TestPages_AddBookValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(map[string]string)
		message string
	}{
		{"year not a number", func(f map[string]string) { f["year"] = "soon" }, "Year must be a whole number"},
		{"year too small", func(f map[string]string) { f["year"] = "999" }, "Year"},
		{"year too large", func(f map[string]string) { f["year"] = "10000" }, "Year"},
		{"blank title", func(f map[string]string) { f["title"] = "  " }, "Title"},
		{"missing genre", func(f map[string]string) { delete(f, "genre") }, "Genre"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			fields := duneForm()
			tt.modify(fields)

			w := postMultipart(env, t, "/books", fields, "dune.png", []byte("png"))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Contains(t, w.Body.String(), `name="title"`, "the form is shown again")

			all, err := env.lib.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)

			entries, _ := os.ReadDir(env.uploadsDir)
			assert.Empty(t, entries, "nothing is staged for a rejected form")
		})
	}
}

func TestPages_AddBookUploadTooLarge(t *testing.T) {
	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.MaxUploadBytes = 1 << 20 })

	w := postMultipart(env, t, "/books", duneForm(), "big.png", make([]byte, 2<<20))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "smaller than 1 MB")
	assert.Empty(t, stagedFiles(t, env.uploadsDir))
	all, err := env.lib.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPages_AddBookCoverOverLimitKeepsForm(t *testing.T) {
	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.MaxUploadBytes = 1 << 20 })

	// Over the cover limit but within the room left for the form fields
	w := postMultipart(env, t, "/books", duneForm(), "big.png", make([]byte, 1<<20+512<<10))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "smaller than 1 MB")
	assert.Contains(t, w.Body.String(), `value="Dune"`)
	assert.Empty(t, stagedFiles(t, env.uploadsDir))
	all, err := env.lib.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPages_Search(t *testing.T) {
	env := setupTestEnv(t)
	addBook(t, env, library.NewBook{Title: "The Hobbit", Author: "Tolkien", Year: 1937, Genre: "Fantasy"})
	addBook(t, env, library.NewBook{Title: "Dune", Author: "Herbert", Year: 1965, Genre: "Sci-Fi"})

	t.Run("lists matches", func(t *testing.T) {
		w := env.get("/search?q=tolkien")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "The Hobbit by Tolkien (1937)")
		assert.NotContains(t, w.Body.String(), "Dune by Herbert")
	})

	t.Run("reports no matches", func(t *testing.T) {
		w := env.get("/search?q=asimov")

		assert.Contains(t, w.Body.String(), "No books found.")
	})

	t.Run("shows only the form before searching", func(t *testing.T) {
		w := env.get("/search")

		assert.NotContains(t, w.Body.String(), "No books found.")
		assert.NotContains(t, w.Body.String(), "The Hobbit by")
	})
}

func TestPages_Stats(t *testing.T) {
	t.Run("warns when empty", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.get("/stats")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No books available for statistics.")
		assert.NotContains(t, w.Body.String(), "<svg")
	})

	t.Run("draws the genre chart", func(t *testing.T) {
		env := setupTestEnv(t)
		addBook(t, env, library.NewBook{Title: "Dune", Author: "Herbert", Year: 1965, Genre: "Sci-Fi", ReadStatus: true})
		addBook(t, env, library.NewBook{Title: "Foundation", Author: "Asimov", Year: 1951, Genre: "Sci-Fi"})
		addBook(t, env, library.NewBook{Title: "The Hobbit", Author: "Tolkien", Year: 1937, Genre: "Fantasy"})

		w := env.get("/stats")

		body := w.Body.String()
		assert.Contains(t, body, "Total books: 3")
		assert.Contains(t, body, "Read: 1")
		assert.Contains(t, body, "Unread: 2")
		assert.Contains(t, body, "<svg")
		assert.Contains(t, body, "Sci-Fi: 2")
		assert.Contains(t, body, "Fantasy: 1")
	})
}

func TestPages_RemoveBook(t *testing.T) {
	env := setupTestEnv(t)
	dune := addBook(t, env, library.NewBook{Title: "Dune", Author: "Herbert", Year: 1965, Genre: "Sci-Fi"})

	page := env.get("/books/remove")
	assert.Contains(t, page.Body.String(), "Dune by Herbert")

	w := env.postForm("/books/remove", url.Values{"book_id": {itoa(dune.Book.ID)}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	all, err := env.lib.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	after := env.get("/books/remove", sessionCookie(t, w))
	assert.Contains(t, after.Body.String(), "&#39;Dune by Herbert&#39; removed successfully!")
	assert.Contains(t, after.Body.String(), "No books to remove.")
}

func TestPages_RemoveBookUnknownOrMissingID(t *testing.T) {
	env := setupTestEnv(t)
	addBook(t, env, library.NewBook{Title: "Dune", Author: "Herbert", Year: 1965, Genre: "Sci-Fi"})

	for _, id := range []string{"", "abc", "4242"} {
		w := env.postForm("/books/remove", url.Values{"book_id": {id}})
		assert.Equal(t, http.StatusSeeOther, w.Code, id)
		assert.Equal(t, "/books/remove", w.Header().Get("Location"))
	}

	all, err := env.lib.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPages_Exit(t *testing.T) {
	env := setupTestEnv(t)

	confirm := env.get("/exit")
	assert.Equal(t, 0, env.exits, "viewing the page does not stop the server")
	assert.Contains(t, confirm.Body.String(), `action="/exit"`)

	w := env.postForm("/exit", url.Values{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Exiting application...")
	assert.Equal(t, 1, env.exits)

	env.postForm("/exit", url.Values{})
	assert.Equal(t, 1, env.exits, "shutdown is requested once")
}

func TestPages_ErrorQueryShown(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get("/books/new?error=" + url.QueryEscape("Session expired. Please try again."))

	assert.True(t, strings.Contains(w.Body.String(), "Session expired. Please try again."))
}
