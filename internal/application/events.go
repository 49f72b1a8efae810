package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	EventListCreated = "list.created"
	EventListDeleted = "list.deleted"
	EventTaskCreated = "task.created"
	EventTaskDeleted = "task.deleted"
)

// Event is the JSON payload published on the events queue.
type Event struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	ListID string    `json:"list_id,omitempty"`
	TaskID string    `json:"task_id,omitempty"`
	Count  int64     `json:"count,omitempty"`
	At     time.Time `json:"at"`
}

// publish is best effort: the request already succeeded against the store.
func publish(ctx context.Context, pub EventPublisher, logger *logrus.Logger, ev Event) {
	if pub == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := pub.PublishJSON(ctx, ev); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{"event": ev.Type, "user_id": ev.UserID}).Warn("publish event failed")
	}
}
