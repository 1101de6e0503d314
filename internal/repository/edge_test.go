package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/internal/model"
)

func TestFollowIdempotence(t *testing.T) {
	db := newTestDB(t)
	edges := NewEdgeRepository(db)
	a, b := seedUser(t, db, "a"), seedUser(t, db, "b")

	edge, err := edges.AddEdge(testCtx, EdgeFollow, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, EdgeFollow, edge.Kind)

	_, err = edges.AddEdge(testCtx, EdgeFollow, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	assert.EqualValues(t, 1, reload[model.User](t, db, b.ID).FollowersCount)
	assert.EqualValues(t, 1, reload[model.User](t, db, a.ID).FollowingCount)

	require.NoError(t, edges.RemoveEdge(testCtx, EdgeFollow, a.ID, b.ID))
	assert.ErrorIs(t, edges.RemoveEdge(testCtx, EdgeFollow, a.ID, b.ID), ErrNotFound)
	assert.EqualValues(t, 0, reload[model.User](t, db, b.ID).FollowersCount)
	assert.EqualValues(t, 0, reload[model.User](t, db, a.ID).FollowingCount)
}

func TestFollowSelfReference(t *testing.T) {
	db := newTestDB(t)
	a := seedUser(t, db, "a")
	_, err := NewEdgeRepository(db).AddEdge(testCtx, EdgeFollow, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfReference)
	assert.EqualValues(t, 0, reload[model.User](t, db, a.ID).FollowersCount)
}

func TestAddEdgeMissingEndpoint(t *testing.T) {
	db := newTestDB(t)
	a := seedUser(t, db, "a")
	_, err := NewEdgeRepository(db).AddEdge(testCtx, EdgeFollow, a.ID, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 0, reload[model.User](t, db, a.ID).FollowingCount)
}

func TestFollowersMatchRecompute(t *testing.T) {
	db := newTestDB(t)
	edges := NewEdgeRepository(db)
	counters := NewCounterRepository(db)
	users := seedUsers(t, db, 8)
	target := users[0]

	for _, u := range users[1:] {
		_, err := edges.AddEdge(testCtx, EdgeFollow, u.ID, target.ID)
		require.NoError(t, err)
	}
	require.NoError(t, edges.RemoveEdge(testCtx, EdgeFollow, users[3].ID, target.ID))

	stored, err := counters.Stored(testCtx, CounterUserFollowers, target.ID)
	require.NoError(t, err)
	real, err := counters.Recompute(testCtx, CounterUserFollowers, target.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, real)
	assert.Equal(t, real, stored)
}

func TestConcurrentPostLikes(t *testing.T) {
	db := newTestDB(t)
	edges := NewEdgeRepository(db)
	const n = 25
	users := seedUsers(t, db, n)
	board := seedBoard(t, db, users[0], "golang")
	post := seedPost(t, db, board, users[0])

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, u := range users {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := edges.AddEdge(testCtx, EdgePostLike, post.ID, uid)
			errs <- err
		}(u.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.EqualValues(t, n, reload[model.Post](t, db, post.ID).LikesCount)
	assert.EqualValues(t, n, reload[model.User](t, db, users[0].ID).LikesCount)
	real, err := NewCounterRepository(db).Count(testCtx, CounterPostLikes, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, real)
}

func TestConcurrentDuplicateLikeCountsOnce(t *testing.T) {
	db := newTestDB(t)
	edges := NewEdgeRepository(db)
	u := seedUser(t, db, "u")
	board := seedBoard(t, db, u, "dup")
	post := seedPost(t, db, board, u)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, dup int
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := edges.AddEdge(testCtx, EdgePostLike, post.ID, u.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, ErrAlreadyExists) {
				dup++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, dup)
	assert.EqualValues(t, 1, reload[model.Post](t, db, post.ID).LikesCount)
}

func TestBoardJoinScenario(t *testing.T) {
	db := newTestDB(t)
	edges := NewEdgeRepository(db)
	users := seedUsers(t, db, 6)
	board := seedBoard(t, db, users[0], "x")
	for _, u := range users[1:5] {
		_, err := edges.AddEdge(testCtx, EdgeBoardMembership, board.ID, u.ID)
		require.NoError(t, err)
	}
	require.EqualValues(t, 5, reload[model.Board](t, db, board.ID).MembersCount)

	newcomer := users[5]
	_, err := edges.AddEdge(testCtx, EdgeBoardMembership, board.ID, newcomer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, reload[model.Board](t, db, board.ID).MembersCount)

	_, err = edges.AddEdge(testCtx, EdgeBoardMembership, board.ID, newcomer.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.EqualValues(t, 6, reload[model.Board](t, db, board.ID).MembersCount)

	role, err := NewRoleRepository(db).RoleOf(testCtx, board.ID, newcomer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, role)
}

func TestOwnerCannotLeave(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	board := seedBoard(t, db, owner, "mine")

	err := NewEdgeRepository(db).RemoveEdge(testCtx, EdgeBoardMembership, board.ID, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.EqualValues(t, 1, reload[model.Board](t, db, board.ID).MembersCount)
}

func TestLikeDeletedPost(t *testing.T) {
	db := newTestDB(t)
	edges := NewEdgeRepository(db)
	author, fan := seedUser(t, db, "author"), seedUser(t, db, "fan")
	board := seedBoard(t, db, author, "b")
	post := seedPost(t, db, board, author)

	_, err := edges.AddEdge(testCtx, EdgePostLike, post.ID, fan.ID)
	require.NoError(t, err)
	require.NoError(t, NewPostRepository(db).SoftDelete(testCtx, post.ID))

	_, err = edges.AddEdge(testCtx, EdgePostLike, post.ID, author.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 软删的帖子仍可取消点赞，计数随之回退
	require.NoError(t, edges.RemoveEdge(testCtx, EdgePostLike, post.ID, fan.ID))
	assert.EqualValues(t, 0, reload[model.User](t, db, author.ID).LikesCount)
}

func TestCommentLikeAndCollection(t *testing.T) {
	db := newTestDB(t)
	edges := NewEdgeRepository(db)
	op, replier, fan := seedUser(t, db, "op"), seedUser(t, db, "replier"), seedUser(t, db, "fan")
	board := seedBoard(t, db, op, "b")
	post := seedPost(t, db, board, op)
	c := seedComment(t, db, post, replier)

	_, err := edges.AddEdge(testCtx, EdgeCommentLike, c.ID, fan.ID)
	require.NoError(t, err)
	_, err = edges.AddEdge(testCtx, EdgePostCollection, post.ID, fan.ID)
	require.NoError(t, err)
	_, err = edges.AddEdge(testCtx, EdgeBoardFollow, fan.ID, board.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, reload[model.Comment](t, db, c.ID).LikesCount)
	assert.EqualValues(t, 1, reload[model.User](t, db, replier.ID).LikesCount)
	assert.EqualValues(t, 0, reload[model.User](t, db, op.ID).LikesCount)
	assert.EqualValues(t, 1, reload[model.Post](t, db, post.ID).CollectionsCount)
	assert.EqualValues(t, 1, reload[model.Board](t, db, board.ID).FollowersCount)

	exists, err := edges.Exists(testCtx, EdgePostCollection, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	followers, err := edges.Sources(testCtx, EdgeBoardFollow, board.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{fan.ID}, followers)
	boards, err := edges.Targets(testCtx, EdgeBoardFollow, fan.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{board.ID}, boards)
}

func TestUnknownEdgeKind(t *testing.T) {
	db := newTestDB(t)
	_, err := NewEdgeRepository(db).AddEdge(testCtx, EdgeKind("friend"), "a", "b")
	assert.Error(t, err)
}
