package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/internal/model"
)

func TestNotificationLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	u := seedUser(t, db, "u")

	var ids []string
	for _, typ := range []model.NotificationType{model.NotifyLike, model.NotifyFollow, model.NotifyLike} {
		n := &model.Notification{ID: uuid.NewString(), UserID: u.ID, Type: typ, Title: string(typ)}
		require.NoError(t, repo.Create(testCtx, n))
		ids = append(ids, n.ID)
	}

	likes, err := repo.List(testCtx, u.ID, NotificationFilter{Type: model.NotifyLike}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, likes, 2)

	n, err := repo.MarkRead(testCtx, u.ID, ids[:1])
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.MarkRead(testCtx, "someone-else", ids[1:])
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err := repo.CountUnread(testCtx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)
	onlyUnread, err := repo.List(testCtx, u.ID, NotificationFilter{Unread: true}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, onlyUnread, 2)

	n, err = repo.MarkAllRead(testCtx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.Delete(testCtx, u.ID, ids[0]))
	assert.ErrorIs(t, repo.Delete(testCtx, u.ID, ids[0]), ErrNotFound)
}

func TestNotificationSettings(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	s, err := repo.Settings(testCtx, "nobody")
	require.NoError(t, err)
	assert.True(t, s.Allows(model.NotifyLike))

	s.NotifyOnLike = false
	require.NoError(t, repo.SaveSettings(testCtx, s))
	got, err := repo.Settings(testCtx, "nobody")
	require.NoError(t, err)
	assert.False(t, got.Allows(model.NotifyLike))
	assert.True(t, got.Allows(model.NotifyFollow))

	got.NotifyOnLike = true
	got.NotifyOnFollow = false
	require.NoError(t, repo.SaveSettings(testCtx, got))
	got, err = repo.Settings(testCtx, "nobody")
	require.NoError(t, err)
	assert.True(t, got.Allows(model.NotifyLike))
	assert.False(t, got.Allows(model.NotifyFollow))
}

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	u := &model.User{Username: "alice", Password: "hash"}
	require.NoError(t, users.Create(testCtx, u))
	assert.NotEmpty(t, u.ID)
	assert.ErrorIs(t, users.Create(testCtx, &model.User{Username: "alice", Password: "x"}), ErrAlreadyExists)

	got, err := users.GetByUsername(testCtx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	_, err = users.GetByID(testCtx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := users.IDsByUsernames(testCtx, []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": u.ID}, ids)

	s, err := NewNotificationRepository(db).Settings(testCtx, u.ID)
	require.NoError(t, err)
	assert.True(t, s.NotifyOnReply)
}
