// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"medley/internal/models"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if len(username) > 60 {
		return fmt.Errorf("username must not exceed 60 characters")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 120 {
		return fmt.Errorf("email must not exceed 120 characters")
	}
	return nil
}

// ValidateCommentBody checks a comment body against the column bound.
func ValidateCommentBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body is required")
	}
	if len(body) > models.MaxCommentLength {
		return fmt.Errorf("comment body must not exceed %d characters", models.MaxCommentLength)
	}
	return nil
}
