package application_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/testutil"
	"github.com/oksasatya/go-ddd-todo/pkg/mailer"
)

func TestReminder_OneDigestPerOwner(t *testing.T) {
	store := testutil.NewMemStore()
	ctx := context.Background()
	users := store.Users()
	ada := &entity.User{Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, users.UpsertByEmail(ctx, ada))
	bo := &entity.User{Email: "bo@example.com", Name: "Bo"}
	require.NoError(t, users.UpsertByEmail(ctx, bo))

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	soon := now.Add(2 * time.Hour)
	later := now.Add(48 * time.Hour)
	store.PutTask(entity.Task{Title: "a1", UserID: ada.ID, DueDate: &soon})
	store.PutTask(entity.Task{Title: "a2", UserID: ada.ID, DueDate: &soon})
	store.PutTask(entity.Task{Title: "done", UserID: ada.ID, DueDate: &soon, Completed: true})
	store.PutTask(entity.Task{Title: "b-later", UserID: bo.ID, DueDate: &later})
	store.PutTask(entity.Task{Title: "no-date", UserID: bo.ID})

	pub := &testutil.FakePublisher{}
	svc := application.NewReminderService(store.Tasks(), users, pub, nil, "Todo", "http://app.test", 24*time.Hour)
	svc.Now = func() time.Time { return now }

	n, err := svc.EnqueueDueSoon(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	require.Len(t, pub.Messages, 1)
	var job mailer.EmailJob
	require.NoError(t, json.Unmarshal(pub.Messages[0], &job))
	assert.Equal(t, "ada@example.com", job.To)
	assert.Equal(t, "due_reminder", job.Template)
	tasks, ok := job.Data["Tasks"].([]any)
	require.True(t, ok)
	assert.Len(t, tasks, 2)
}

func TestReminder_RequiresQueue(t *testing.T) {
	store := testutil.NewMemStore()
	svc := application.NewReminderService(store.Tasks(), store.Users(), nil, nil, "", "", time.Hour)

	_, err := svc.EnqueueDueSoon(context.Background())
	assert.Error(t, err)
}
