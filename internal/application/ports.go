package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
)

// TaskHit is one search result, always owned by the caller.
type TaskHit struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	ListID    string  `json:"listId"`
	Completed bool    `json:"completed"`
	Score     float64 `json:"score"`
}

// TaskIndexer keeps a full-text copy of tasks.
type TaskIndexer interface {
	IndexTask(ctx context.Context, t entity.Task) error
	DeleteTask(ctx context.Context, userID, id string) error
	DeleteList(ctx context.Context, userID, listID string) error
	Search(ctx context.Context, userID, q string, size int) ([]TaskHit, error)
}

// EventPublisher puts a JSON message on a queue.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ExternalIdentity is what the identity provider tells us about a signed-in person.
type ExternalIdentity struct {
	Subject  string
	Email    string
	Name     string
	Picture  string
	Verified bool
}

// IdentityProvider runs the OAuth2 authorization code flow.
type IdentityProvider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*ExternalIdentity, error)
}

// AvatarMirror copies a remote profile image into our own bucket.
type AvatarMirror interface {
	Mirror(ctx context.Context, userID, srcURL string) (string, error)
}

// SignInState is kept between the redirect to the provider and the callback.
type SignInState struct {
	Verifier    string `json:"verifier"`
	CallbackURL string `json:"callback_url"`
}

// SessionStore persists OAuth state and live sessions. A user holds one
// session per signed-in device.
type SessionStore interface {
	SaveState(ctx context.Context, state string, st SignInState, ttl time.Duration) error
	// TakeState returns and deletes the state; ok is false when it is missing or expired.
	TakeState(ctx context.Context, state string) (st SignInState, ok bool, err error)
	SaveSession(ctx context.Context, u *entity.User, sid string, ttl time.Duration) error
	// HasSession reports whether sid is a live session of userID.
	HasSession(ctx context.Context, userID, sid string) (bool, error)
	DeleteSession(ctx context.Context, userID, sid string) error
}
