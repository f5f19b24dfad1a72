// Package main provides a tool to seed the database with test catalog and
// reading data.
//
// It imports book feed files into the catalog and optionally creates test
// users with realistic reading activity (shelves, bookmarks, progress and
// completions) to exercise goal and completion features during development.
//
// Usage:
//
//	DATA_PATH=~/novelreads go run ./cmd/seed --feed ./feed
//	DATA_PATH=~/novelreads go run ./cmd/seed --feed ./feed --create-users
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/novelreads/novelreads-server/internal/auth"
	"github.com/novelreads/novelreads-server/internal/catalog"
	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/id"
	"github.com/novelreads/novelreads-server/internal/reading"
	"github.com/novelreads/novelreads-server/internal/search"
	"github.com/novelreads/novelreads-server/internal/store"
)

var (
	feedDir     = flag.String("feed", "", "Directory of book feed JSON files to import")
	createUsers = flag.Bool("create-users", false, "Create test users with reading activity")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/novelreads")
	}

	fmt.Printf("Opening data directory at: %s\n", dataPath)

	s, err := store.New(dataPath+"/db", nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	index, err := search.NewIndex(search.Options{DataPath: dataPath})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	ctx := context.Background()

	if *feedDir != "" {
		importer := catalog.NewImporter(s, index, slog.New(slog.NewTextHandler(os.Stderr, nil)))
		count, err := importer.ImportDir(ctx, *feedDir)
		if err != nil {
			log.Fatalf("Failed to import feed: %v", err)
		}
		fmt.Printf("Imported %d books from %s\n", count, *feedDir)
	}

	if *createUsers {
		createTestUsers(ctx, s)
	}

	// Collect the catalog for activity seeding
	var books []*domain.Book
	for book, err := range s.Books.List(ctx) {
		if err != nil {
			log.Fatalf("Failed to list books: %v", err)
		}
		books = append(books, book)
	}

	if len(books) == 0 {
		fmt.Println("No books in catalog, nothing to seed. Pass --feed to import some.")
		return
	}

	var users []*domain.User
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		users = append(users, user)
	}

	if len(users) == 0 {
		fmt.Println("No users in database. Pass --create-users or register one first.")
		return
	}

	fmt.Printf("Found %d users and %d books\n", len(users), len(books))

	registry := reading.NewRegistry(s, nil)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := registry.Shutdown(shutdownCtx); err != nil {
			log.Printf("Tracker shutdown error: %v", err)
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, user := range users {
		fmt.Printf("\nSeeding reading activity for: %s (%s)\n", user.Name(), user.ID)
		if err := seedUserActivity(ctx, registry, user, books, rng); err != nil {
			log.Printf("Failed to seed activity for %s: %v", user.ID, err)
		}
	}

	fmt.Println("\nSeeding complete!")
}

// seedUserActivity fills one user's tracker with shelves, bookmarks and a
// mix of in-progress and finished books.
func seedUserActivity(
	ctx context.Context,
	registry *reading.Registry,
	user *domain.User,
	books []*domain.Book,
	rng *rand.Rand,
) error {
	tracker, err := registry.Acquire(ctx, user.ID)
	if err != nil {
		return err
	}
	defer registry.Release(ctx, user.ID)

	// Pick 4-8 random books for this user
	numBooks := min(4+rng.Intn(5), len(books))

	shuffled := make([]*domain.Book, len(books))
	copy(shuffled, books)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	selected := shuffled[:numBooks]

	// A themed shelf next to the starter shelf
	shelfName := "Seeded Picks"
	if err := tracker.CreateShelf(shelfName); err == nil {
		fmt.Printf("  Created shelf: %s\n", shelfName)
	}

	inProgress := 0
	finished := 0

	for _, book := range selected {
		if err := tracker.AddBookToShelf(shelfName, *book); err != nil {
			continue
		}

		tracker.ToggleBookmark(*book)

		pages := book.Pages
		if pages <= 0 {
			pages = 250 + rng.Intn(400)
		}

		// Roughly a third of the picks get finished outright
		if rng.Intn(3) == 0 {
			if _, err := tracker.UpdateProgress(book.ID, pages); err != nil {
				log.Printf("  Failed to finish %s: %v", book.Title, err)
				continue
			}
			finished++
			fmt.Printf("  Finished: %s\n", book.Title)
		} else {
			read := 1 + rng.Intn(max(pages-1, 1))
			if _, err := tracker.UpdateProgress(book.ID, read); err != nil {
				log.Printf("  Failed to update progress on %s: %v", book.Title, err)
				continue
			}
			inProgress++
			fmt.Printf("  Reading: %s (%d/%d pages)\n", book.Title, read, pages)
		}
	}

	// An annual goal a bit above what was just finished
	target := finished + 6 + rng.Intn(18)
	if _, err := tracker.SetGoal(target); err != nil {
		log.Printf("  Failed to set goal: %v", err)
	} else {
		fmt.Printf("  Set goal: %d books (%d already finished)\n", target, finished)
	}

	fmt.Printf("  Seeded %d in-progress and %d finished books\n", inProgress, finished)
	return nil
}

// testUserNames are usernames for generated test users.
var testUserNames = []string{
	"alex.rivera",
	"jordan.chen",
	"sam.taylor",
	"casey.morgan",
	"riley.kim",
}

// createTestUsers creates test users with default profiles.
func createTestUsers(ctx context.Context, s *store.Store) {
	fmt.Println("\n=== Creating Test Users ===")

	passwordHash, err := auth.HashPassword("testpass123")
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return
	}

	now := time.Now()

	for i, name := range testUserNames {
		email := fmt.Sprintf("test%d@example.com", i+1)

		if existing, _ := s.Users.GetByIndex(ctx, "email", email); existing != nil {
			fmt.Printf("  User %s already exists, skipping\n", email)
			continue
		}

		userID := id.MustGenerate("user")
		user := &domain.User{
			ID:           userID,
			Email:        email,
			Username:     name,
			PasswordHash: passwordHash,
			LastLoginAt:  now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.Users.Create(ctx, userID, user); err != nil {
			log.Printf("  Failed to create user %s: %v", name, err)
			continue
		}

		profile := domain.NewProfile(userID)
		if err := s.Profiles.Create(ctx, userID, profile); err != nil {
			log.Printf("  Failed to create profile for %s: %v", name, err)
		}

		fmt.Printf("  Created user: %s (%s)\n", name, email)
	}

	fmt.Println("=== Test Users Created ===")
}
