package todoclient

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// maxTitle mirrors the server's bound on titles.
const maxTitle = 60

var (
	ErrInvalidTitle = errors.New("title must be 1-60 characters")
	ErrNoSubtask    = errors.New("subtask index out of range")
)

// The transforms below return a new sequence and never modify subs. The
// result is sent whole as the task's subtasks.

func AddSubtask(subs []Subtask, title string) ([]Subtask, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	out := make([]Subtask, 0, len(subs)+1)
	out = append(out, subs...)
	return append(out, Subtask{Title: title}), nil
}

func ToggleSubtask(subs []Subtask, i int) ([]Subtask, error) {
	if i < 0 || i >= len(subs) {
		return nil, ErrNoSubtask
	}
	out := append([]Subtask{}, subs...)
	out[i].Completed = !out[i].Completed
	return out, nil
}

func RenameSubtask(subs []Subtask, i int, title string) ([]Subtask, error) {
	if i < 0 || i >= len(subs) {
		return nil, ErrNoSubtask
	}
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	out := append([]Subtask{}, subs...)
	out[i].Title = title
	return out, nil
}

func RemoveSubtask(subs []Subtask, i int) ([]Subtask, error) {
	if i < 0 || i >= len(subs) {
		return nil, ErrNoSubtask
	}
	out := make([]Subtask, 0, len(subs)-1)
	out = append(out, subs[:i]...)
	return append(out, subs[i+1:]...), nil
}

func cleanTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n == 0 || n > maxTitle {
		return "", ErrInvalidTitle
	}
	return s, nil
}
