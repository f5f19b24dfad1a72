package domain

import (
	"sort"
	"time"
)

// Bookmark marks a book as in-progress. At most one bookmark exists per
// book ID; toggling the bookmark off discards it along with its progress.
type Bookmark struct {
	Book         Book       `json:"book"`
	PagesRead    int        `json:"pages_read"`
	BookmarkedAt time.Time  `json:"bookmarked_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// NewBookmark starts tracking a book with zero progress.
func NewBookmark(book Book) *Bookmark {
	return &Bookmark{
		Book:         book,
		BookmarkedAt: time.Now(),
	}
}

// IsFinished reports whether the reader has reached the last page.
// Books with no page count never finish through progress updates.
func (bm *Bookmark) IsFinished() bool {
	return bm.Book.Pages > 0 && bm.PagesRead == bm.Book.Pages
}

// SetPagesRead sets absolute progress, clamped to [0, Pages]. It returns
// true exactly on the transition from unfinished to finished, stamping
// FinishedAt at that moment. Setting the same final page again, or moving
// backwards off the last page and forward again, reports a new transition
// only after the finished flag was actually cleared.
func (bm *Bookmark) SetPagesRead(pages int) bool {
	wasFinished := bm.IsFinished()
	bm.PagesRead = bm.Book.ClampPages(pages)

	if !bm.IsFinished() {
		bm.FinishedAt = nil
		return false
	}
	if wasFinished {
		return false
	}
	now := time.Now()
	bm.FinishedAt = &now
	return true
}

// Progress returns the fraction of the book read in [0, 1].
func (bm *Bookmark) Progress() float64 {
	if bm.Book.Pages <= 0 {
		return 0
	}
	return float64(bm.PagesRead) / float64(bm.Book.Pages)
}

// Completion records a finished read: the book snapshot at completion
// time plus when it happened.
type Completion struct {
	Book        Book      `json:"book"`
	CompletedAt time.Time `json:"completed_at"`
}

// ReadingGoal is a target number of books to finish, anchored at the
// moment it was set. Only completions after SetAt count toward it.
type ReadingGoal struct {
	Target int       `json:"target"` // Books to finish, > 0
	SetAt  time.Time `json:"set_at"`
}

// Progress returns completed count and percentage toward the goal,
// considering only completions after the goal was set. The percentage is
// clamped to 100.
func (g *ReadingGoal) Progress(completions []Completion) (completed, percent int) {
	for _, c := range completions {
		if c.CompletedAt.After(g.SetAt) {
			completed++
		}
	}
	if g.Target <= 0 {
		return completed, 0
	}
	percent = completed * 100 / g.Target
	if percent > 100 {
		percent = 100
	}
	return completed, percent
}

// ReadingState is the whole per-user reading world: shelves, bookmarks,
// the completion log, and the optional goal. It is what gets persisted
// as a single blob and restored on login.
type ReadingState struct {
	Shelves     map[string]*Shelf    `json:"shelves"`
	Bookmarks   map[string]*Bookmark `json:"bookmarks"`   // Keyed by book ID
	Completions []Completion         `json:"completions"` // Newest first
	Goal        *ReadingGoal         `json:"goal,omitempty"`
}

// NewReadingState returns an empty state ready for use.
func NewReadingState() *ReadingState {
	return &ReadingState{
		Shelves:   make(map[string]*Shelf),
		Bookmarks: make(map[string]*Bookmark),
	}
}

// Normalize repairs nil maps after JSON decoding so callers never have to
// nil-check. A zero-value or partially decoded state becomes usable.
func (s *ReadingState) Normalize() {
	if s.Shelves == nil {
		s.Shelves = make(map[string]*Shelf)
	}
	if s.Bookmarks == nil {
		s.Bookmarks = make(map[string]*Bookmark)
	}
}

// Clone returns a deep copy of the state. Used to snapshot the state for
// asynchronous persistence without holding the owner's lock during the
// write.
func (s *ReadingState) Clone() *ReadingState {
	out := &ReadingState{
		Shelves:   make(map[string]*Shelf, len(s.Shelves)),
		Bookmarks: make(map[string]*Bookmark, len(s.Bookmarks)),
	}
	for name, shelf := range s.Shelves {
		copied := *shelf
		copied.Books = append([]Book(nil), shelf.Books...)
		out.Shelves[name] = &copied
	}
	for id, bm := range s.Bookmarks {
		copied := *bm
		if bm.FinishedAt != nil {
			at := *bm.FinishedAt
			copied.FinishedAt = &at
		}
		out.Bookmarks[id] = &copied
	}
	out.Completions = append([]Completion(nil), s.Completions...)
	if s.Goal != nil {
		goal := *s.Goal
		out.Goal = &goal
	}
	return out
}

// ShelfNames returns shelf names in lexicographic order.
func (s *ReadingState) ShelfNames() []string {
	names := make([]string, 0, len(s.Shelves))
	for name := range s.Shelves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RecordCompletion appends a completion for the book, superseding any
// earlier completion of the same book ID. The log stays sorted newest
// first.
func (s *ReadingState) RecordCompletion(book Book, at time.Time) Completion {
	for i, c := range s.Completions {
		if c.Book.ID == book.ID {
			s.Completions = append(s.Completions[:i], s.Completions[i+1:]...)
			break
		}
	}
	done := Completion{Book: book, CompletedAt: at}
	s.Completions = append(s.Completions, done)
	sort.SliceStable(s.Completions, func(i, j int) bool {
		return s.Completions[i].CompletedAt.After(s.Completions[j].CompletedAt)
	})
	return done
}

// RecentCompletions returns up to n of the most recent completions.
func (s *ReadingState) RecentCompletions(n int) []Completion {
	if n < 0 {
		n = 0
	}
	if n > len(s.Completions) {
		n = len(s.Completions)
	}
	out := make([]Completion, n)
	copy(out, s.Completions[:n])
	return out
}
