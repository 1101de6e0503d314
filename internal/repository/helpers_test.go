package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/config"
	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/pkg/database"
)

var testCtx = context.Background()

func newTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedUser(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.New().String(), Username: name, Nickname: name, Password: "p"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedUsers(t testing.TB, db *gorm.DB, n int) []*model.User {
	t.Helper()
	users := make([]*model.User, n)
	for i := range users {
		users[i] = seedUser(t, db, fmt.Sprintf("u%04d", i))
	}
	return users
}

func seedBoard(t testing.TB, db *gorm.DB, owner *model.User, name string) *model.Board {
	t.Helper()
	b := &model.Board{Name: name, OwnerID: owner.ID}
	require.NoError(t, NewBoardRepository(db).Create(testCtx, b))
	return b
}

func seedPost(t testing.TB, db *gorm.DB, board *model.Board, author *model.User) *model.Post {
	t.Helper()
	p := &model.Post{BoardID: board.ID, AuthorID: author.ID, Title: "t-" + uuid.NewString()[:6], Content: "c"}
	require.NoError(t, NewPostRepository(db).Create(testCtx, p))
	return p
}

func seedComment(t testing.TB, db *gorm.DB, post *model.Post, author *model.User) *model.Comment {
	t.Helper()
	c := &model.Comment{PostID: post.ID, AuthorID: author.ID, Content: "reply"}
	require.NoError(t, NewCommentRepository(db).Create(testCtx, c))
	return c
}

func reload[T any](t testing.TB, db *gorm.DB, id string) *T {
	t.Helper()
	var v T
	require.NoError(t, db.Where("id = ?", id).First(&v).Error)
	return &v
}
