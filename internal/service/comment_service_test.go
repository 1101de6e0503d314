package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
)

func TestParseMentions(t *testing.T) {
	got := parseMentions("hi @alice and @bob_1, again @alice; @ab too short, mail a@x")
	assert.Equal(t, []string{"alice", "bob_1"}, got)
	assert.Empty(t, parseMentions("no mentions"))
}

func TestCommentNotifications(t *testing.T) {
	svc, rec, _ := newTestServices(t)
	author, replier, carol, dave := register(t, svc, "author"), register(t, svc, "replier"), register(t, svc, "carol"), register(t, svc, "dave")
	b, err := svc.Boards.Create(testCtx, author.ID, CreateBoardInput{Name: "b"})
	require.NoError(t, err)
	p, err := svc.Posts.Publish(testCtx, author.ID, PublishInput{BoardID: b.ID, Title: "t"})
	require.NoError(t, err)

	first, err := svc.Comments.Create(testCtx, carol.ID, CreateCommentInput{PostID: p.ID, Content: "first"})
	require.NoError(t, err)

	// 帖子作者同时被 @ 只收到一条；自己 @ 自己不发送
	c, err := svc.Comments.Create(testCtx, replier.ID, CreateCommentInput{
		PostID:    p.ID,
		ParentID:  first.ID,
		ReplyToID: carol.ID,
		Content:   "@author @dave @replier @ghost hello",
	})
	require.NoError(t, err)
	require.NotNil(t, c.ParentID)

	toAuthor := rec.to(author.ID)
	require.Len(t, toAuthor, 2) // carol 的评论 + replier 的回复
	assert.Equal(t, model.NotifyReply, toAuthor[1].kind)

	toCarol := rec.to(carol.ID)
	require.Len(t, toCarol, 1)
	assert.Equal(t, model.NotifyReply, toCarol[0].kind)

	toDave := rec.to(dave.ID)
	require.Len(t, toDave, 1)
	assert.Equal(t, model.NotifyMention, toDave[0].kind)
	assert.Equal(t, c.ID, toDave[0].p.CommentID)

	assert.Empty(t, rec.to(replier.ID))

	replies, err := svc.Comments.ListReplies(testCtx, first.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, c.ID, replies[0].ID)

	got, err := svc.Posts.View(testCtx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.CommentsCount)
}

func TestCommentDeleteAndLike(t *testing.T) {
	svc, rec, _ := newTestServices(t)
	author, other := register(t, svc, "author"), register(t, svc, "other")
	b, err := svc.Boards.Create(testCtx, author.ID, CreateBoardInput{Name: "b"})
	require.NoError(t, err)
	p, err := svc.Posts.Publish(testCtx, author.ID, PublishInput{BoardID: b.ID, Title: "t"})
	require.NoError(t, err)
	c, err := svc.Comments.Create(testCtx, other.ID, CreateCommentInput{PostID: p.ID, Content: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.Comments.Like(testCtx, c.ID, author.ID))
	likes := rec.to(other.ID)
	require.Len(t, likes, 1)
	assert.Equal(t, model.NotifyLike, likes[0].kind)

	_, err = svc.Comments.Create(testCtx, other.ID, CreateCommentInput{PostID: p.ID, Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 吧主可以删别人的评论
	require.NoError(t, svc.Comments.Delete(testCtx, c.ID, author.ID))
	assert.ErrorIs(t, svc.Comments.Delete(testCtx, c.ID, other.ID), repository.ErrNotFound)
}
