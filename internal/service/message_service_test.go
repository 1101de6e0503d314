package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
)

func TestSendAndStats(t *testing.T) {
	svc, _, db := newTestServices(t)
	a, b := register(t, svc, "alice"), register(t, svc, "bob")

	for i := 0; i < 3; i++ {
		_, err := svc.Messages.Send(testCtx, a.ID, b.ID, "", "hi <b>there</b>")
		require.NoError(t, err)
	}
	m, err := svc.Messages.Send(testCtx, b.ID, a.ID, model.MessageTypeText, "yo")
	require.NoError(t, err)

	_, err = svc.Messages.Send(testCtx, a.ID, b.ID, "video", "x")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Messages.Send(testCtx, a.ID, b.ID, "", "  ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Messages.Send(testCtx, a.ID, a.ID, "", "me")
	assert.ErrorIs(t, err, repository.ErrSelfReference)

	require.NoError(t, db.Create(&model.Notification{ID: "n1", UserID: b.ID, Type: model.NotifySystem, Title: "hello"}).Error)

	stats, err := svc.Messages.Stats(testCtx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, &MessageStats{UnreadMessages: 3, UnreadNotifications: 1, Sessions: 1}, stats)

	views, err := svc.Messages.Sessions(testCtx, b.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, a.ID, views[0].OtherUserID)
	assert.EqualValues(t, 3, views[0].Unread)
	require.NotNil(t, views[0].LastMessageID)
	assert.Equal(t, m.ID, *views[0].LastMessageID)

	n, err := svc.Messages.MarkRead(testCtx, views[0].ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	msgs, err := svc.Messages.Messages(testCtx, views[0].ID, b.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
	for _, msg := range msgs {
		assert.NotContains(t, msg.Content, "<b>")
	}

	stats, err = svc.Messages.Stats(testCtx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.UnreadMessages)
	assert.EqualValues(t, 1, stats.UnreadNotifications)
}
