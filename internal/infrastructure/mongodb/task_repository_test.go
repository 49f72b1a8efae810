package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

func TestTaskUpdateDoc_SetsOnlySuppliedFields(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	title := "Renamed"

	doc := taskUpdateDoc(entity.TaskPatch{Title: &title}, now)

	assert.Equal(t, bson.M{"$set": bson.M{"title": "Renamed", "updatedAt": now}}, doc)
}

func TestTaskUpdateDoc_NullSlotsUnset(t *testing.T) {
	now := time.Now()

	doc := taskUpdateDoc(entity.TaskPatch{DueDate: entity.Null[time.Time](), Description: entity.Some("d")}, now)

	assert.Equal(t, bson.M{"dueDate": ""}, doc["$unset"])
	set := doc["$set"].(bson.M)
	assert.Equal(t, "d", set["description"])
	assert.NotContains(t, set, "dueDate")
}

func TestTaskUpdateDoc_ReplacesWholeSubtaskArray(t *testing.T) {
	subs := []entity.Subtask{{Title: "a", Completed: true}}

	doc := taskUpdateDoc(entity.TaskPatch{Subtasks: &subs}, time.Now())

	set := doc["$set"].(bson.M)
	assert.Equal(t, []subtaskDoc{{Title: "a", Completed: true}}, set["subtasks"])
}

func TestTaskDocToEntity(t *testing.T) {
	owner := primitive.NewObjectID()
	list := primitive.NewObjectID()
	doc := taskDoc{
		ID:       primitive.NewObjectID(),
		Title:    "Buy milk",
		Subtasks: []subtaskDoc{{Title: "a"}},
		User:     owner,
		ListID:   list,
	}

	got := doc.toEntity()

	assert.Equal(t, owner.Hex(), got.UserID)
	assert.Equal(t, list.Hex(), got.ListID)
	assert.Equal(t, []entity.Subtask{{Title: "a"}}, got.Subtasks)
	assert.Nil(t, got.DueDate)
}

func TestOwnedFilter_RejectsMalformedIDs(t *testing.T) {
	_, err := ownedFilter("zzz", primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrInvalidID))

	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()
	f, err := ownedFilter(owner.Hex(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": id, "user": owner}, f)
}
