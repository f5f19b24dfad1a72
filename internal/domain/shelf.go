package domain

import "time"

// Shelf is a named, ordered list of book snapshots owned by one user.
// Duplicates are allowed: adding the same book twice yields two entries,
// and removal takes out the first match only.
type Shelf struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
	Books     []Book    `json:"books"` // Insertion order
}

// NewShelf creates an empty shelf with the given name.
func NewShelf(name string) *Shelf {
	now := time.Now()
	return &Shelf{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Books:     []Book{},
	}
}

// AddBook appends a book snapshot to the shelf. Duplicates are allowed.
func (s *Shelf) AddBook(book Book) {
	s.Books = append(s.Books, book)
	s.UpdatedAt = time.Now()
}

// RemoveBook removes the first entry matching bookID.
// Returns false if no entry matched.
func (s *Shelf) RemoveBook(bookID string) bool {
	for i, b := range s.Books {
		if b.ID == bookID {
			s.Books = append(s.Books[:i], s.Books[i+1:]...)
			s.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// ContainsBook checks whether any entry matches bookID.
func (s *Shelf) ContainsBook(bookID string) bool {
	for _, b := range s.Books {
		if b.ID == bookID {
			return true
		}
	}
	return false
}
