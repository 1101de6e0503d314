package repository

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/d60-Lab/tieba/internal/model"
)

func seedBenchUsers(b *testing.B, n int) ([]model.User, EdgeRepository, FollowRepository) {
	db := newTestDB(b)
	users := make([]model.User, n)
	for i := range users {
		id := fmt.Sprintf("u%05d", i)
		users[i] = model.User{ID: id, Username: id, Password: "p"}
	}
	if err := db.CreateInBatches(&users, 500).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}
	return users, NewEdgeRepository(db), NewFollowRepository(db)
}

func BenchmarkFollowWrite_WithCounters(b *testing.B) {
	users, edges, _ := seedBenchUsers(b, 1000)
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rng.Intn(len(users))].ID
		to := users[rng.Intn(len(users))].ID
		if _, err := edges.AddEdge(testCtx, EdgeFollow, from, to); err != nil {
			continue // 自关注 / 重复关注
		}
		_ = edges.RemoveEdge(testCtx, EdgeFollow, from, to)
	}
}

func BenchmarkQueryFollowersAndFollowing(b *testing.B) {
	const n = 2000
	users, edges, follows := seedBenchUsers(b, n+1)
	// u00000 有 n 个粉丝，同时关注 n 个用户
	star := users[0].ID
	for _, u := range users[1:] {
		if _, err := edges.AddEdge(testCtx, EdgeFollow, u.ID, star); err != nil {
			b.Fatalf("follow: %v", err)
		}
		if _, err := edges.AddEdge(testCtx, EdgeFollow, star, u.ID); err != nil {
			b.Fatalf("follow back: %v", err)
		}
	}

	b.ResetTimer()
	b.Run("ListFollowers", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = follows.ListFollowers(testCtx, star, 0, 50)
		}
	})
	b.Run("ListFollowings", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = follows.ListFollowings(testCtx, star, 0, 50)
		}
	})
	b.Run("IsMutual", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = follows.IsMutual(testCtx, star, users[1+i%n].ID)
		}
	})
}
