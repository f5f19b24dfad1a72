// Package catalog imports the book catalog from JSON feed files and keeps
// the store and search index in sync with them.
package catalog

import (
	"encoding/json/v2"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/normalize"
)

// feedBook is one entry in a catalog feed file. Field names follow the
// upstream feed format, which predates this server.
type feedBook struct {
	ID                  string         `json:"id,omitempty"`
	Title               string         `json:"title"`
	Author              string         `json:"author"`
	Pages               int            `json:"pages,omitempty"`
	Rating              float64        `json:"rating,omitempty"`
	NumberOfRatings     int            `json:"number_of_ratings,omitempty"`
	RatingsDistribution map[string]int `json:"ratings_distribution,omitempty"`
	Publisher           string         `json:"publisher,omitempty"`
	ISBN                string         `json:"isbn,omitempty"`
	Released            string         `json:"released,omitempty"`
	Genres              []string       `json:"genres,omitempty"`
	Description         string         `json:"description,omitempty"` // May be HTML
	About               string         `json:"about,omitempty"`       // May be HTML
	CoverPath           string         `json:"cover_path,omitempty"`
}

// ParseFeed reads and validates a feed file, returning catalog books
// ready for the store. Descriptions arriving as HTML are converted to
// Markdown.
func ParseFeed(path string) ([]*domain.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var entries []feedBook
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", path, err)
	}

	books := make([]*domain.Book, 0, len(entries))
	for i, entry := range entries {
		book, err := entry.toBook()
		if err != nil {
			return nil, fmt.Errorf("feed %s entry %d: %w", path, i, err)
		}
		books = append(books, book)
	}
	return books, nil
}

func (f feedBook) toBook() (*domain.Book, error) {
	if f.Title == "" {
		return nil, fmt.Errorf("missing title")
	}
	if f.Author == "" {
		return nil, fmt.Errorf("missing author")
	}

	now := time.Now()
	return &domain.Book{
		ID:                  f.bookID(),
		Title:               f.Title,
		Author:              f.Author,
		Pages:               domain.ClampPages(f.Pages),
		Rating:              f.Rating,
		NumberOfRatings:     f.NumberOfRatings,
		RatingsDistribution: f.RatingsDistribution,
		Publisher:           f.Publisher,
		ISBN:                f.ISBN,
		Released:            f.Released,
		Genres:              f.Genres,
		Description:         htmlToMarkdown(f.Description),
		About:               htmlToMarkdown(f.About),
		CoverPath:           f.CoverPath,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// bookID returns a stable identifier so re-importing a feed updates
// books in place instead of duplicating them. Explicit IDs win, then
// ISBN, then a slug of title and author.
func (f feedBook) bookID() string {
	if f.ID != "" {
		return f.ID
	}
	if f.ISBN != "" {
		return "book-" + normalize.Slugify(f.ISBN)
	}
	return "book-" + normalize.Slugify(f.Title+" "+f.Author)
}

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// htmlToMarkdown converts HTML content to Markdown. Plain text passes
// through unchanged, as does anything the converter chokes on.
func htmlToMarkdown(s string) string {
	if s == "" || !containsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
