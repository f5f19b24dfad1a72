// Package domain contains the core types of the Novelreads server.
// Types here are pure data with behavior and carry no storage or transport
// concerns.
package domain

import "time"

// Book is an immutable catalog record. Per-user reading state (bookmarks,
// progress, completions) lives in ReadingState, never on the catalog record.
type Book struct {
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Author              string         `json:"author"`
	Pages               int            `json:"pages"` // Total page count, >= 0
	Rating              float64        `json:"rating"`
	NumberOfRatings     int            `json:"number_of_ratings"`
	RatingsDistribution map[string]int `json:"ratings_distribution,omitempty"` // Star bucket ("1".."5") -> count
	Publisher           string         `json:"publisher,omitempty"`
	ISBN                string         `json:"isbn,omitempty"`
	Released            string         `json:"released,omitempty"`
	Genres              []string       `json:"genres,omitempty"`
	Description         string         `json:"description,omitempty"` // Markdown
	About               string         `json:"about,omitempty"`       // About-the-author blurb, Markdown
	CoverPath           string         `json:"cover_path,omitempty"`
}

// ClampPages clamps a total page count to be non-negative, per the Pages
// invariant on Book.
func ClampPages(pages int) int {
	if pages < 0 {
		return 0
	}
	return pages
}

// ClampPages clamps a page count to the book's valid range [0, Pages].
func (b *Book) ClampPages(pages int) int {
	if pages < 0 {
		return 0
	}
	if pages > b.Pages {
		return b.Pages
	}
	return pages
}
