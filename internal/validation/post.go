// Package validation provides input validation utilities.
package validation

import (
	"fmt"
	"unicode/utf8"
)

const (
	// TitleMaxLen is the maximum allowed post title length in characters.
	TitleMaxLen = 200
	// ContentMaxLen is the maximum allowed post content length in characters.
	ContentMaxLen = 10000
)

// ValidateTitle checks post title bounds (1-200 characters).
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > TitleMaxLen {
		return fmt.Errorf("title must be between 1 and %d characters", TitleMaxLen)
	}
	return nil
}

// ValidateContent checks post content bounds (1-10,000 characters).
func ValidateContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < 1 || n > ContentMaxLen {
		return fmt.Errorf("content must be between 1 and %d characters", ContentMaxLen)
	}
	return nil
}
