package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	minLevel = 1
	maxLevel = 6

	maxChildNameLength = 50
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateChildName checks a child's display name. Single letters are allowed.
func ValidateChildName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > maxChildNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxChildNameLength)}
	}
	return nil
}

// ValidateLevel checks a numeric school level
func ValidateLevel(level int) error {
	if level < minLevel || level > maxLevel {
		return ValidationError{Field: "level", Message: fmt.Sprintf("level must be between %d and %d", minLevel, maxLevel)}
	}
	return nil
}

// ValidateYearWeek checks an ISO year/week pair
func ValidateYearWeek(year, week int) error {
	if year < 2000 || year > 2100 {
		return ValidationError{Field: "year", Message: "invalid year"}
	}
	if last := lastISOWeek(year); week < 1 || week > last {
		return ValidationError{Field: "week", Message: fmt.Sprintf("week must be between 1 and %d", last)}
	}
	return nil
}

// 28 December always falls in the last ISO week of its year
func lastISOWeek(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}
