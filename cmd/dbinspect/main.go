// Package main provides a read-only inspector for the Badger database.
//
// Usage:
//
//	DATA_PATH=~/novelreads go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/novelreads/novelreads-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/novelreads")
	}
	dbPath := dataPath + "/db"

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	fmt.Printf("Users:           %d\n", countPrefix(db, "user:"))
	fmt.Printf("Profiles:        %d\n", countPrefix(db, "profile:"))
	fmt.Printf("Sessions:        %d\n", countPrefix(db, "session:"))
	fmt.Printf("Reading states:  %d\n", countPrefix(db, "bookshelf:"))
	fmt.Printf("Documents:       %d\n", countPrefix(db, "doc:"))

	bookCount := 0
	booksWithPages := 0
	totalPages := 0

	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("book:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte("book:")); it.ValidForPrefix([]byte("book:")); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Skip secondary index keys
			if strings.Contains(key, "idx:") {
				continue
			}

			err := item.Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				bookCount++
				if book.Pages > 0 {
					booksWithPages++
					totalPages += book.Pages
				}

				// Show a sample of the catalog
				if bookCount <= 3 {
					fmt.Println()
					fmt.Printf("Book: %s\n", book.Title)
					fmt.Printf("  ID: %s\n", book.ID)
					fmt.Printf("  Author: %s\n", book.Author)
					fmt.Printf("  Pages: %d\n", book.Pages)
					fmt.Printf("  Rating: %.2f (%d ratings)\n", book.Rating, book.NumberOfRatings)
					fmt.Printf("  Genres: %s\n", strings.Join(book.Genres, ", "))
				}
				return nil
			})
			if err != nil {
				log.Printf("Error reading book %s: %v", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Total books: %d\n", bookCount)
	fmt.Printf("Books with page counts: %d\n", booksWithPages)
	if booksWithPages > 0 {
		fmt.Printf("Average pages per book: %d\n", totalPages/booksWithPages)
	}
}

// countPrefix counts non-index keys under a prefix.
func countPrefix(db *badger.DB, prefix string) int {
	count := 0
	_ = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			if strings.Contains(key, "idx:") {
				continue
			}
			count++
		}
		return nil
	})
	return count
}
