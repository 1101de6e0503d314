package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/internal/model"
)

func setupRoles(t *testing.T) (RoleRepository, *model.Board, *model.User, *model.User, *model.User) {
	t.Helper()
	db := newTestDB(t)
	owner, mod, member := seedUser(t, db, "owner"), seedUser(t, db, "mod"), seedUser(t, db, "member")
	board := seedBoard(t, db, owner, "roles")
	edges := NewEdgeRepository(db)
	for _, u := range []*model.User{mod, member} {
		_, err := edges.AddEdge(testCtx, EdgeBoardMembership, board.ID, u.ID)
		require.NoError(t, err)
	}
	roles := NewRoleRepository(db)
	_, err := roles.Promote(testCtx, board.ID, owner.ID, mod.ID)
	require.NoError(t, err)
	return roles, board, owner, mod, member
}

func TestPromoteCapsAtModerator(t *testing.T) {
	roles, board, owner, _, member := setupRoles(t)

	role, err := roles.Promote(testCtx, board.ID, owner.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, role)

	for i := 0; i < 2; i++ {
		role, err = roles.Promote(testCtx, board.ID, owner.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleModerator, role)
	}
}

func TestPromoteRequiresModerator(t *testing.T) {
	roles, board, owner, mod, member := setupRoles(t)

	_, err := roles.Promote(testCtx, board.ID, member.ID, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	role, err := roles.Promote(testCtx, board.ID, mod.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, role)

	_, err = roles.Promote(testCtx, board.ID, owner.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDemote(t *testing.T) {
	roles, board, owner, mod, member := setupRoles(t)

	_, err := roles.Demote(testCtx, board.ID, mod.ID, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = roles.Demote(testCtx, board.ID, owner.ID, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	role, err := roles.Demote(testCtx, board.ID, owner.ID, mod.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, role)

	// 已是最低级，不再变化
	role, err = roles.Demote(testCtx, board.ID, owner.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, role)
}

func TestConcurrentPromoteSingleStep(t *testing.T) {
	roles, board, owner, _, member := setupRoles(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := roles.Promote(testCtx, board.ID, owner.ID, member.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	role, err := roles.RoleOf(testCtx, board.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, role)
}

func TestAuthorize(t *testing.T) {
	roles, board, owner, mod, member := setupRoles(t)
	for _, a := range []Action{ActionPinPost, ActionFeaturePost, ActionModerateMember} {
		assert.NoError(t, roles.Authorize(testCtx, board.ID, owner.ID, a))
		assert.NoError(t, roles.Authorize(testCtx, board.ID, mod.ID, a))
		assert.ErrorIs(t, roles.Authorize(testCtx, board.ID, member.ID, a), ErrForbidden)
		assert.ErrorIs(t, roles.Authorize(testCtx, board.ID, "stranger", a), ErrForbidden)
	}
	assert.ErrorIs(t, roles.Authorize(testCtx, board.ID, mod.ID, ActionDeleteBoard), ErrForbidden)
	assert.NoError(t, roles.Authorize(testCtx, board.ID, owner.ID, ActionDeleteBoard))
	assert.ErrorIs(t, roles.Authorize(testCtx, board.ID, owner.ID, Action("nuke")), ErrForbidden)
	assert.ErrorIs(t, roles.Authorize(testCtx, "missing", owner.ID, ActionPinPost), ErrNotFound)
}

func TestKickChecksHierarchyInsideTx(t *testing.T) {
	db := newTestDB(t)
	owner, mod, peer, member := seedUser(t, db, "owner"), seedUser(t, db, "mod"), seedUser(t, db, "peer"), seedUser(t, db, "member")
	board := seedBoard(t, db, owner, "kick")
	edges := NewEdgeRepository(db)
	for _, u := range []*model.User{mod, peer, member} {
		_, err := edges.AddEdge(testCtx, EdgeBoardMembership, board.ID, u.ID)
		require.NoError(t, err)
	}
	roles := NewRoleRepository(db)
	_, err := roles.Promote(testCtx, board.ID, owner.ID, mod.ID)
	require.NoError(t, err)
	before := reload[model.Board](t, db, board.ID).MembersCount

	assert.ErrorIs(t, roles.Kick(testCtx, board.ID, member.ID, peer.ID), ErrForbidden)
	assert.ErrorIs(t, roles.Kick(testCtx, board.ID, mod.ID, owner.ID), ErrForbidden)
	assert.ErrorIs(t, roles.Kick(testCtx, board.ID, mod.ID, "stranger"), ErrNotFound)
	assert.ErrorIs(t, roles.Kick(testCtx, "missing", mod.ID, peer.ID), ErrNotFound)

	// 被提升为同级后不能再被移出
	_, err = roles.Promote(testCtx, board.ID, owner.ID, peer.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, roles.Kick(testCtx, board.ID, mod.ID, peer.ID), ErrForbidden)

	require.NoError(t, roles.Kick(testCtx, board.ID, mod.ID, member.ID))
	role, err := roles.RoleOf(testCtx, board.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleNone, role)
	assert.Equal(t, before-1, reload[model.Board](t, db, board.ID).MembersCount)

	require.NoError(t, roles.Kick(testCtx, board.ID, owner.ID, peer.ID))
	assert.Equal(t, before-2, reload[model.Board](t, db, board.ID).MembersCount)
}
