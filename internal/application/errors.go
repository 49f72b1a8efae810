package application

import (
	"errors"
	"strings"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

var (
	// ErrUnauthorized means no caller identity could be resolved.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound = errors.New("not found")
)

// ValidationError names the offending field; errors.Is(err, ErrValidation) holds.
type ValidationError = entity.ValidationError

var ErrValidation = entity.ErrValidation

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return ErrUnauthorized
	}
	return nil
}

// notFound maps the repository sentinels onto the service taxonomy.
func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrInvalidID) {
		return ErrNotFound
	}
	return err
}
