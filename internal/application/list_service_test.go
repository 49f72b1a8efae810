package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/testutil"
)

const (
	alice = "7f7c1c8e-0000-4000-8000-00000000000a"
	bob   = "7f7c1c8e-0000-4000-8000-00000000000b"
)

type fixture struct {
	store  *testutil.MemStore
	index  *testutil.FakeIndexer
	events *testutil.FakePublisher
	lists  *application.ListService
	tasks  *application.TaskService
}

func newFixture() *fixture {
	store := testutil.NewMemStore()
	index := testutil.NewFakeIndexer()
	events := &testutil.FakePublisher{}
	return &fixture{
		store:  store,
		index:  index,
		events: events,
		lists:  application.NewListService(store.Lists(), index, events, nil),
		tasks:  application.NewTaskService(store.Tasks(), store.Lists(), index, events, nil, false),
	}
}

func (f *fixture) mustList(t *testing.T, owner, name string) *entity.List {
	t.Helper()
	l, err := f.lists.Create(context.Background(), owner, name)
	require.NoError(t, err)
	return l
}

func (f *fixture) mustTask(t *testing.T, owner, listID, title string) *entity.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), owner, application.CreateTaskInput{Title: title, ListID: listID})
	require.NoError(t, err)
	return task
}

func TestListService_Unauthenticated_TouchesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.lists.List(ctx, "")
	assert.ErrorIs(t, err, application.ErrUnauthorized)
	_, err = f.lists.Create(ctx, "  ", "Groceries")
	assert.ErrorIs(t, err, application.ErrUnauthorized)
	_, err = f.lists.Delete(ctx, "", "whatever")
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	assert.Zero(t, f.store.Calls())
}

func TestListService_CreateTrimsAndStamps(t *testing.T) {
	f := newFixture()

	l := f.mustList(t, alice, "  Groceries ")

	assert.Equal(t, "Groceries", l.Name)
	assert.Equal(t, alice, l.UserID)
	assert.NotEmpty(t, l.ID)
	assert.False(t, l.CreatedAt.IsZero())

	evs := f.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, application.EventListCreated, evs[0].Type)
}

func TestListService_CreateRejectsBadNames(t *testing.T) {
	f := newFixture()

	for _, name := range []string{"", "   ", strings.Repeat("x", 61)} {
		_, err := f.lists.Create(context.Background(), alice, name)
		require.Error(t, err)
		assert.True(t, errors.Is(err, application.ErrValidation))
		var ve *application.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "name", ve.Field)
	}
	assert.Zero(t, f.store.ListCount())
}

func TestListService_ListNewestFirstAndScoped(t *testing.T) {
	f := newFixture()
	first := f.mustList(t, alice, "First")
	second := f.mustList(t, alice, "Second")
	f.mustList(t, bob, "Bob's")

	got, err := f.lists.List(context.Background(), alice)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestListService_DeleteCascadesOwnTasksOnly(t *testing.T) {
	f := newFixture()
	l1 := f.mustList(t, alice, "L1")
	l2 := f.mustList(t, alice, "L2")
	f.mustTask(t, alice, l1.ID, "a")
	f.mustTask(t, alice, l1.ID, "b")
	keep := f.mustTask(t, alice, l2.ID, "c")
	// another owner pointing at the same list id survives the cascade
	bobs := f.mustTask(t, bob, l1.ID, "d")

	res, err := f.lists.Delete(context.Background(), alice, l1.ID)
	require.NoError(t, err)

	assert.Equal(t, application.DeleteListResult{ListID: l1.ID, DeletedTasks: 2}, res)
	remaining, err := f.tasks.List(context.Background(), alice, nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)

	bobTasks, err := f.tasks.List(context.Background(), bob, nil)
	require.NoError(t, err)
	require.Len(t, bobTasks, 1)
	assert.Equal(t, bobs.ID, bobTasks[0].ID)

	assert.Contains(t, f.index.Deleted, "list:"+l1.ID)
	evs := f.events.Events()
	last := evs[len(evs)-1]
	assert.Equal(t, application.EventListDeleted, last.Type)
	assert.Equal(t, int64(2), last.Count)
}

func TestListService_DeleteEmptyList(t *testing.T) {
	f := newFixture()
	l := f.mustList(t, alice, "Empty")

	res, err := f.lists.Delete(context.Background(), alice, l.ID)

	require.NoError(t, err)
	assert.Zero(t, res.DeletedTasks)
}

func TestListService_DeleteOtherUsersListIsNotFound(t *testing.T) {
	f := newFixture()
	l := f.mustList(t, alice, "Private")
	f.mustTask(t, alice, l.ID, "secret")

	_, err := f.lists.Delete(context.Background(), bob, l.ID)

	assert.ErrorIs(t, err, application.ErrNotFound)
	assert.Equal(t, 1, f.store.ListCount())
	assert.Equal(t, 1, f.store.TaskCount())
}

func TestListService_DeleteUnknownOrMalformedID(t *testing.T) {
	f := newFixture()

	_, err := f.lists.Delete(context.Background(), alice, "not-an-id")
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestListService_IndexFailureDoesNotFailDelete(t *testing.T) {
	f := newFixture()
	l := f.mustList(t, alice, "L")
	f.index.Err = errors.New("es down")

	_, err := f.lists.Delete(context.Background(), alice, l.ID)

	assert.NoError(t, err)
}

func TestListService_StoreErrorPassesThrough(t *testing.T) {
	f := newFixture()
	boom := errors.New("boom")
	f.store.Err = boom

	_, err := f.lists.List(context.Background(), alice)

	assert.ErrorIs(t, err, boom)
}
