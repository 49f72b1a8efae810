package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/testutil"
)

func TestDecodeEvent(t *testing.T) {
	ev, err := application.DecodeEvent([]byte(`{"type":"list.deleted","user_id":"u","list_id":"l"}`))
	require.NoError(t, err)
	assert.Equal(t, application.EventListDeleted, ev.Type)

	_, err = application.DecodeEvent([]byte(`{}`))
	assert.Error(t, err)
	_, err = application.DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestReconcile_ListDeletedRemovesLeftovers(t *testing.T) {
	store := testutil.NewMemStore()
	index := testutil.NewFakeIndexer()
	svc := application.NewReconcileService(store.Tasks(), index, nil)
	listID := "9b2b7f0e-1111-4000-8000-000000000001"
	// tasks that survived a half-finished cascade
	store.PutTask(entity.Task{Title: "left", UserID: alice, ListID: listID})
	store.PutTask(entity.Task{Title: "bob", UserID: bob, ListID: listID})

	ev := application.Event{Type: application.EventListDeleted, UserID: alice, ListID: listID}
	require.NoError(t, svc.HandleEvent(context.Background(), ev))
	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	assert.Equal(t, 1, store.TaskCount())
	assert.Contains(t, index.Deleted, "list:"+listID)
}

func TestReconcile_IgnoresOtherEvents(t *testing.T) {
	store := testutil.NewMemStore()
	svc := application.NewReconcileService(store.Tasks(), nil, nil)

	require.NoError(t, svc.HandleEvent(context.Background(), application.Event{Type: application.EventListCreated}))
	assert.Zero(t, store.Calls())

	assert.Error(t, svc.HandleEvent(context.Background(), application.Event{Type: application.EventListDeleted}))
}

func TestReconcile_SweepOrphans(t *testing.T) {
	f := newFixture()
	svc := application.NewReconcileService(f.store.Tasks(), nil, nil)
	l := f.mustList(t, alice, "L")
	kept := f.mustTask(t, alice, l.ID, "kept")
	f.store.PutTask(entity.Task{Title: "orphan", UserID: alice, ListID: "9b2b7f0e-1111-4000-8000-000000000002"})
	// a list id owned by someone else does not count as a home
	f.store.PutTask(entity.Task{Title: "foreign", UserID: bob, ListID: l.ID})

	n, err := svc.SweepOrphans(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), n)
	left, err := f.tasks.List(context.Background(), alice, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, ids(left))
}
