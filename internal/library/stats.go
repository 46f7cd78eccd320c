package library

import (
	"sort"

	"github.com/mrlokans/library-manager/internal/entities"
)

// GenreCount is one bar of the genre chart.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// Stats summarises a collection.
type Stats struct {
	Total   int            `json:"total"`
	Read    int            `json:"read"`
	Unread  int            `json:"unread"`
	ByGenre map[string]int `json:"by_genre"`
	Genres  []GenreCount   `json:"genres"` // most common first, ties by name
}

// Empty reports whether there were no books to summarise.
func (s Stats) Empty() bool {
	return s.Total == 0
}

// MaxGenreCount is the height of the tallest bar.
func (s Stats) MaxGenreCount() int {
	if len(s.Genres) == 0 {
		return 0
	}
	return s.Genres[0].Count
}

// ComputeStats counts read/unread books and books per genre.
func ComputeStats(all []entities.Book) Stats {
	stats := Stats{
		Total:   len(all),
		ByGenre: make(map[string]int),
	}
	for _, b := range all {
		if b.ReadStatus {
			stats.Read++
		}
		stats.ByGenre[b.Genre]++
	}
	stats.Unread = stats.Total - stats.Read

	stats.Genres = make([]GenreCount, 0, len(stats.ByGenre))
	for genre, n := range stats.ByGenre {
		stats.Genres = append(stats.Genres, GenreCount{Genre: genre, Count: n})
	}
	sort.Slice(stats.Genres, func(i, j int) bool {
		if stats.Genres[i].Count != stats.Genres[j].Count {
			return stats.Genres[i].Count > stats.Genres[j].Count
		}
		return stats.Genres[i].Genre < stats.Genres[j].Genre
	})

	return stats
}
