// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxPostTextLength bounds the body of a post or comment, in runes.
const MaxPostTextLength = 5000

// MaxCirclesPerPost bounds how many circles a single post may be shared to.
const MaxCirclesPerPost = 50

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}

// ValidateDisplayName checks a user's display name.
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name is required")
	}
	if trimmed != name {
		return fmt.Errorf("name cannot start or end with whitespace")
	}
	if utf8.RuneCountInString(name) > 100 {
		return fmt.Errorf("name must not exceed 100 characters")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("name cannot contain control characters")
		}
	}
	return nil
}

// ValidatePostText checks the body of a new post.
func ValidatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("text must be valid UTF-8")
	}
	if utf8.RuneCountInString(text) > MaxPostTextLength {
		return fmt.Errorf("text must not exceed %d characters", MaxPostTextLength)
	}
	return nil
}

// ValidateCircleIDs checks the circles a new post is shared to. An empty
// list is a private post.
func ValidateCircleIDs(ids []uint) error {
	if len(ids) > MaxCirclesPerPost {
		return fmt.Errorf("a post can be shared to at most %d circles", MaxCirclesPerPost)
	}
	for _, id := range ids {
		if id == 0 {
			return fmt.Errorf("circle ids must be positive")
		}
	}
	return nil
}
