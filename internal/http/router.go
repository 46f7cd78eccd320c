package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.MaxMultipartMemory = cfg.maxUploadBytes()

	// Apply security headers to all responses
	router.Use(SecurityHeadersMiddleware())

	// Bounds the body before CSRF parses the form
	router.Use(UploadLimitMiddleware(cfg.maxUploadBytes()))

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.Middleware())
	}

	router.SetHTMLTemplate(loadTemplates())

	health := NewHealthController(cfg.Database, cfg.Version)
	pages := NewPagesController(cfg.Books, cfg.Sessions, cfg.UploadsDir, cfg.maxUploadBytes(), cfg.OnExit)
	booksController := NewBooksController(cfg.Books, cfg.UploadsDir, cfg.maxUploadBytes())
	coversController := NewCoversController(cfg.Books, cfg.DefaultCoverPath)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Pages
	router.GET("/", pages.Home)
	router.GET("/books/new", pages.AddForm)
	router.POST("/books", pages.AddBook)
	router.GET("/search", pages.Search)
	router.GET("/stats", pages.Stats)
	router.GET("/books/remove", pages.RemoveForm)
	router.POST("/books/remove", pages.RemoveBook)
	router.GET("/exit", pages.ExitPage)
	router.POST("/exit", pages.Exit)

	// Images
	router.GET("/covers/:id", coversController.GetCover)
	router.GET("/static/default-cover", coversController.DefaultCover)

	// Books API endpoints
	router.GET("/api/books", booksController.GetAllBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books/search", booksController.SearchBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)
	router.GET("/api/stats", booksController.GetStats)

	return router
}
