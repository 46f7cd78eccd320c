// Package database provides the data access layer for the catalogue.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and schema initialisation
//	└── books/           # Book CRUD operations
//
// # Usage
//
//	db, err := database.NewDatabase("./library.db")
//	repo := books.NewRepository(db.DB)
//	all, err := repo.List()
//
// A single *gorm.DB handle is kept for the life of the process. SQLite
// serialises writers itself; the DSN sets a busy timeout so concurrent
// requests wait for the lock rather than failing.
package database
