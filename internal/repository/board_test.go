package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/internal/model"
)

func TestCreateBoardAddsOwner(t *testing.T) {
	db := newTestDB(t)
	boards := NewBoardRepository(db)
	owner := seedUser(t, db, "owner")
	b := seedBoard(t, db, owner, "golang")
	assert.EqualValues(t, 1, b.MembersCount)

	role, err := NewRoleRepository(db).RoleOf(testCtx, b.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, role)

	err = boards.Create(testCtx, &model.Board{Name: "golang", OwnerID: owner.ID})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	err = boards.Create(testCtx, &model.Board{Name: "rust", OwnerID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	joined, err := boards.ListJoined(testCtx, owner.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, b.ID, joined[0].ID)
}

func TestUpdateSettingsAndPopular(t *testing.T) {
	db := newTestDB(t)
	boards := NewBoardRepository(db)
	edges := NewEdgeRepository(db)
	users := seedUsers(t, db, 3)
	small := seedBoard(t, db, users[0], "small")
	big := seedBoard(t, db, users[0], "big")
	hidden := seedBoard(t, db, users[0], "hidden")
	for _, u := range users[1:] {
		_, err := edges.AddEdge(testCtx, EdgeBoardMembership, big.ID, u.ID)
		require.NoError(t, err)
	}
	private := true
	desc := "members only"
	got, err := boards.UpdateSettings(testCtx, hidden.ID, BoardSettings{IsPrivate: &private, Description: &desc})
	require.NoError(t, err)
	assert.True(t, got.IsPrivate)
	assert.Equal(t, desc, got.Description)

	popular, err := boards.ListPopular(testCtx, 0, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, big.ID, popular[0].ID)
	assert.Equal(t, small.ID, popular[1].ID)

	members, err := boards.ListMembers(testCtx, big.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, model.RoleOwner, members[0].Role)
}

func TestDeleteBoardCascades(t *testing.T) {
	db := newTestDB(t)
	boards := NewBoardRepository(db)
	edges := NewEdgeRepository(db)
	owner, writer, fan := seedUser(t, db, "owner"), seedUser(t, db, "writer"), seedUser(t, db, "fan")
	doomed := seedBoard(t, db, owner, "doomed")
	other := seedBoard(t, db, owner, "other")
	_, err := edges.AddEdge(testCtx, EdgeBoardMembership, doomed.ID, writer.ID)
	require.NoError(t, err)
	_, err = edges.AddEdge(testCtx, EdgeBoardFollow, fan.ID, doomed.ID)
	require.NoError(t, err)

	p := seedPost(t, db, doomed, writer)
	keep := seedPost(t, db, other, writer)
	c := seedComment(t, db, p, fan)
	for _, e := range []struct {
		kind     EdgeKind
		src, tgt string
	}{
		{EdgePostLike, p.ID, fan.ID},
		{EdgePostLike, keep.ID, fan.ID},
		{EdgePostCollection, p.ID, fan.ID},
		{EdgeCommentLike, c.ID, writer.ID},
	} {
		_, err := edges.AddEdge(testCtx, e.kind, e.src, e.tgt)
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, reload[model.User](t, db, writer.ID).PostsCount)
	require.EqualValues(t, 2, reload[model.User](t, db, writer.ID).LikesCount)

	assert.ErrorIs(t, boards.Delete(testCtx, doomed.ID, writer.ID), ErrForbidden)
	require.NoError(t, boards.Delete(testCtx, doomed.ID, owner.ID))

	_, err = boards.Get(testCtx, doomed.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, m := range []any{&model.BoardMember{}, &model.BoardFollow{}} {
		var n int64
		require.NoError(t, db.Model(m).Where("board_id = ?", doomed.ID).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
	var n int64
	require.NoError(t, db.Model(&model.PostLike{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.Model(&model.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&model.CommentLike{}).Count(&n).Error)
	assert.Zero(t, n)

	w := reload[model.User](t, db, writer.ID)
	assert.EqualValues(t, 1, w.PostsCount)
	assert.EqualValues(t, 1, w.LikesCount)
	assert.EqualValues(t, 0, reload[model.User](t, db, fan.ID).LikesCount)
}
