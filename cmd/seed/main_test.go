package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/testutil"
)

func TestEnsureUser_CreatesOnceAndKeepsProfile(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewMemStore().Users()

	first, created, err := ensureUser(ctx, users, "demo@example.com", "Demo User")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)

	signedIn := &entity.User{Email: "demo@example.com", Name: "Real Name", ImageURL: "https://img.test/a.png"}
	require.NoError(t, users.UpsertByEmail(ctx, signedIn))

	again, created, err := ensureUser(ctx, users, "demo@example.com", "Demo User")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Real Name", again.Name)
	assert.Equal(t, "https://img.test/a.png", again.ImageURL)
}
