package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowReads(t *testing.T) {
	db := newTestDB(t)
	edges := NewEdgeRepository(db)
	follows := NewFollowRepository(db)
	a, b, c := seedUser(t, db, "a"), seedUser(t, db, "b"), seedUser(t, db, "c")

	for _, p := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}, {c.ID, b.ID}} {
		_, err := edges.AddEdge(testCtx, EdgeFollow, p[0], p[1])
		require.NoError(t, err)
	}

	ok, err := follows.Exists(testCtx, c.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	mutual, err := follows.IsMutual(testCtx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, mutual)
	mutual, err = follows.IsMutual(testCtx, c.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, mutual)

	fans, err := follows.ListFollowers(testCtx, b.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, fans, 2)
	following, err := follows.ListFollowings(testCtx, b.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, a.ID, following[0].FolloweeID)
}
