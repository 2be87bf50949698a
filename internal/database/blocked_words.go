package database

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// Word lists used to keep child names and program themes clean
var blockedWordsURLs = []string{
	"https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/nl",
	"https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en",
}

// SeedBlockedWords downloads the blocked word lists once, when the table is empty
func (db *DB) SeedBlockedWords() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM blocked_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check blocked words count: %w", err)
	}

	if count > 0 {
		log.Printf("Blocked words filter already populated with %d words", count)
		return nil
	}

	client := &http.Client{Timeout: 30 * time.Second}
	var words []string
	for _, url := range blockedWordsURLs {
		list, err := fetchWordList(client, url)
		if err != nil {
			return err
		}
		words = append(words, list...)
	}

	added, err := db.AddBlockedWords(words)
	if err != nil {
		return err
	}

	log.Printf("Blocked words filter populated with %d words", added)
	return nil
}

func fetchWordList(client *http.Client, url string) ([]string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download word list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code from word list URL: %d", resp.StatusCode)
	}

	var words []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading word list: %w", err)
	}
	return words, nil
}

// AddBlockedWords inserts words into the filter, skipping duplicates
func (db *DB) AddBlockedWords(words []string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := db.Dialect.InsertIgnore("blocked_words", []string{"word"})
	added := 0
	for _, word := range words {
		word = strings.TrimSpace(strings.ToLower(word))
		if word == "" {
			continue
		}
		if _, err := tx.Exec(query, word); err != nil {
			continue
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, nil
}

// IsBlockedWord checks a single word against the filter
func (db *DB) IsBlockedWord(word string) (bool, error) {
	cleanWord := strings.TrimSpace(strings.ToLower(word))

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM blocked_words WHERE word = ?", cleanWord).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check blocked word: %w", err)
	}

	if count > 0 {
		log.Printf("Blocked word detected: '%s'", word)
	}

	return count > 0, nil
}

// FindBlockedWords splits free text into words and returns the ones in the filter
func (db *DB) FindBlockedWords(text string) ([]string, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var blocked []string
	for _, word := range fields {
		isBlocked, err := db.IsBlockedWord(word)
		if err != nil {
			return nil, err
		}
		if isBlocked {
			blocked = append(blocked, word)
		}
	}

	return blocked, nil
}
