package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShelf(t *testing.T) {
	shelf := NewShelf("To Read")

	assert.Equal(t, "To Read", shelf.Name)
	assert.NotNil(t, shelf.Books)
	assert.Empty(t, shelf.Books)
	assert.False(t, shelf.CreatedAt.IsZero())
}

func TestShelf_AddBook(t *testing.T) {
	shelf := NewShelf("Favorites")

	shelf.AddBook(Book{ID: "book-1", Title: "Dune"})
	shelf.AddBook(Book{ID: "book-2", Title: "Hyperion"})

	require.Len(t, shelf.Books, 2)
	assert.Equal(t, "book-1", shelf.Books[0].ID)
	assert.Equal(t, "book-2", shelf.Books[1].ID)
}

func TestShelf_AddBook_AllowsDuplicates(t *testing.T) {
	shelf := NewShelf("Favorites")

	shelf.AddBook(Book{ID: "book-1"})
	shelf.AddBook(Book{ID: "book-1"})

	assert.Len(t, shelf.Books, 2)
}

func TestShelf_RemoveBook_FirstMatchOnly(t *testing.T) {
	shelf := NewShelf("Favorites")
	shelf.AddBook(Book{ID: "book-1"})
	shelf.AddBook(Book{ID: "book-2"})
	shelf.AddBook(Book{ID: "book-1"})

	removed := shelf.RemoveBook("book-1")

	assert.True(t, removed)
	require.Len(t, shelf.Books, 2)
	assert.Equal(t, "book-2", shelf.Books[0].ID)
	assert.Equal(t, "book-1", shelf.Books[1].ID)
}

func TestShelf_RemoveBook_Absent(t *testing.T) {
	shelf := NewShelf("Favorites")
	shelf.AddBook(Book{ID: "book-1"})

	removed := shelf.RemoveBook("book-404")

	assert.False(t, removed)
	assert.Len(t, shelf.Books, 1)
}

func TestShelf_ContainsBook(t *testing.T) {
	shelf := NewShelf("Favorites")
	shelf.AddBook(Book{ID: "book-1"})

	assert.True(t, shelf.ContainsBook("book-1"))
	assert.False(t, shelf.ContainsBook("book-2"))
}
