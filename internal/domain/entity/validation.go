package entity

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength bounds list names, task titles and subtask titles.
const MaxTitleLength = 60

// MaxDescriptionLength bounds a task description.
const MaxDescriptionLength = 2000

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a field constraint violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NormalizeTitle trims s and checks it holds 1..MaxTitleLength characters.
func NormalizeTitle(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: field, Message: "is required"}
	}
	if utf8.RuneCountInString(s) > MaxTitleLength {
		return "", &ValidationError{Field: field, Message: "must be at most " + strconv.Itoa(MaxTitleLength) + " characters long"}
	}
	return s, nil
}

// CheckDescription rejects descriptions longer than MaxDescriptionLength characters.
func CheckDescription(d *string) error {
	if d != nil && utf8.RuneCountInString(*d) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: "must be at most " + strconv.Itoa(MaxDescriptionLength) + " characters long"}
	}
	return nil
}
