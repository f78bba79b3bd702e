package service

import (
	"context"
	"testing"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Register(ctx, "alice", "secret", "https://img/a.png")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", u.Password)

	_, err = e.users.Register(ctx, "alice", "other", "")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = e.users.Register(ctx, " ", "x", "")
	assert.ErrorIs(t, err, ErrBadRequest)

	token, err := e.users.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-alice", token)

	_, err = e.users.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.users.Login(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetCreator(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	publicVideo(t, e, alice.ID, "live", t0)
	testutil.CreateVideo(t, e.db, alice.ID, "draft", model.VisibilityPrivate, t0)
	require.NoError(t, e.subscriptions.Subscribe(ctx, bob.ID, alice.ID))

	p, err := e.users.GetCreator(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.SubscriberCount)
	assert.Equal(t, int64(1), p.VideoCount)
	assert.True(t, p.ViewerSubscribed)

	own, err := e.users.GetCreator(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.VideoCount)

	_, err = e.users.GetCreator(ctx, 999, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriptions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	assert.ErrorIs(t, e.subscriptions.Subscribe(ctx, alice.ID, alice.ID), ErrBadRequest)
	assert.ErrorIs(t, e.subscriptions.Subscribe(ctx, alice.ID, 999), ErrNotFound)

	require.NoError(t, e.subscriptions.Subscribe(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, e.subscriptions.Subscribe(ctx, alice.ID, bob.ID), ErrConflict)

	require.NoError(t, e.subscriptions.Unsubscribe(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, e.subscriptions.Unsubscribe(ctx, alice.ID, bob.ID), ErrNotFound)
	assert.ErrorIs(t, e.subscriptions.Unsubscribe(ctx, alice.ID, alice.ID), ErrBadRequest)
}
