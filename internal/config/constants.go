package config

// Default on-disk locations, relative to the working directory until resolved.
const (
	// DefaultDatabasePath is the default path for the book catalogue database
	DefaultDatabasePath = "./library.db"

	DefaultCoversDir       = "./covers"
	DefaultUploadsDir      = "./uploads"
	DefaultCoverImagePath  = "./default_cover.png"
	DefaultSweepSchedule   = "*/30 * * * *"
	DefaultUploadRetention = "1h"
)
