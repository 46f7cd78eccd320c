package entities

// Book is the only record the catalogue stores.
type Book struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string  `gorm:"type:text;not null" json:"title"`
	Author     string  `gorm:"type:text;not null" json:"author"`
	Year       int     `gorm:"not null" json:"year"`
	Genre      string  `gorm:"type:text;not null" json:"genre"`
	ReadStatus bool    `gorm:"not null" json:"read_status"` // stored as 0/1
	CoverImage *string `gorm:"type:text" json:"cover_image"` // absolute path, NULL when absent
}

func (Book) TableName() string {
	return "books"
}

// HasCover reports whether a cover path is recorded for the book.
func (b Book) HasCover() bool {
	return b.CoverImage != nil && *b.CoverImage != ""
}

// StatusLabel returns the human-readable read status.
func (b Book) StatusLabel() string {
	if b.ReadStatus {
		return "Read"
	}
	return "Unread"
}

// DisplayName is the "title by author" label used in selection lists.
func (b Book) DisplayName() string {
	return b.Title + " by " + b.Author
}
