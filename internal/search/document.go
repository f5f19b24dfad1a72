// Package search provides full-text catalog search using Bleve. The
// Discover screen's search box queries title, author, genres, and
// description with fuzzy matching for typo tolerance.
package search

import (
	"strconv"

	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/normalize"
)

// Document is the indexed shape of a catalog book.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Publisher   string   `json:"publisher,omitempty"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`      // Display names
	GenreSlugs  []string `json:"genre_slugs,omitempty"` // For exact filtering

	// Numeric fields for range queries and sorting
	Pages       int     `json:"pages,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReleaseYear int     `json:"release_year,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis, for recency sorting
}

// FromBook converts a catalog book to its indexed document.
func FromBook(book *domain.Book) *Document {
	doc := &Document{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Publisher:   book.Publisher,
		Description: book.Description,
		Genres:      book.Genres,
		Pages:       book.Pages,
		Rating:      book.Rating,
		CreatedAt:   book.CreatedAt.UnixMilli(),
	}

	doc.GenreSlugs = make([]string, 0, len(book.Genres))
	for _, g := range book.Genres {
		doc.GenreSlugs = append(doc.GenreSlugs, normalize.Slugify(g))
	}

	// Released is free-form ("1999", "March 2004"); index the year if one
	// can be found.
	if year := releaseYear(book.Released); year > 0 {
		doc.ReleaseYear = year
	}

	return doc
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"created_at": d.CreatedAt,
	}

	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if d.Pages > 0 {
		m["pages"] = d.Pages
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}
	if d.ReleaseYear > 0 {
		m["release_year"] = d.ReleaseYear
	}

	return m
}

// releaseYear extracts a four-digit year from a free-form release string.
func releaseYear(released string) int {
	for i := 0; i+4 <= len(released); i++ {
		if year, err := strconv.Atoi(released[i : i+4]); err == nil && year >= 1000 && year <= 2999 {
			return year
		}
	}
	return 0
}
