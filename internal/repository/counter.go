package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/internal/model"
)

// CounterKind 冗余计数的种类
type CounterKind string

const (
	CounterUserFollowers   CounterKind = "user-followers"
	CounterUserFollowing   CounterKind = "user-following"
	CounterUserPosts       CounterKind = "user-posts"
	CounterUserLikes       CounterKind = "user-likes"
	CounterBoardMembers    CounterKind = "board-members"
	CounterBoardFollowers  CounterKind = "board-followers"
	CounterBoardPosts      CounterKind = "board-posts"
	CounterBoardTodayPosts CounterKind = "board-today-posts"
	CounterPostLikes       CounterKind = "post-likes"
	CounterPostComments    CounterKind = "post-comments"
	CounterPostCollections CounterKind = "post-collections"
	CounterCommentLikes    CounterKind = "comment-likes"
)

type counterSpec struct {
	owner  func() any // 计数所在表的模型
	column string
	count  func(tx *gorm.DB, ownerID string) (int64, error)
}

func countWhere(m any, query string, args ...any) func(*gorm.DB, string) (int64, error) {
	return func(tx *gorm.DB, ownerID string) (int64, error) {
		var n int64
		err := tx.Model(m).Where(query, append([]any{ownerID}, args...)...).Count(&n).Error
		return n, err
	}
}

var counterSpecs = map[CounterKind]counterSpec{
	CounterUserFollowers: {
		owner: func() any { return &model.User{} }, column: "followers_count",
		count: countWhere(&model.Follow{}, "followee_id = ?"),
	},
	CounterUserFollowing: {
		owner: func() any { return &model.User{} }, column: "following_count",
		count: countWhere(&model.Follow{}, "follower_id = ?"),
	},
	CounterUserPosts: {
		owner: func() any { return &model.User{} }, column: "posts_count",
		count: countWhere(&model.Post{}, "author_id = ? AND is_deleted = ?", false),
	},
	CounterUserLikes: {
		owner: func() any { return &model.User{} }, column: "likes_count",
		count: countUserLikes,
	},
	CounterBoardMembers: {
		owner: func() any { return &model.Board{} }, column: "members_count",
		count: countWhere(&model.BoardMember{}, "board_id = ?"),
	},
	CounterBoardFollowers: {
		owner: func() any { return &model.Board{} }, column: "followers_count",
		count: countWhere(&model.BoardFollow{}, "board_id = ?"),
	},
	CounterBoardPosts: {
		owner: func() any { return &model.Board{} }, column: "posts_count",
		count: countWhere(&model.Post{}, "board_id = ? AND is_deleted = ?", false),
	},
	CounterBoardTodayPosts: {
		owner: func() any { return &model.Board{} }, column: "today_posts_count",
		count: func(tx *gorm.DB, ownerID string) (int64, error) {
			var n int64
			err := tx.Model(&model.Post{}).
				Where("board_id = ? AND is_deleted = ? AND created_at >= ?", ownerID, false, startOfDay(time.Now())).
				Count(&n).Error
			return n, err
		},
	},
	CounterPostLikes: {
		owner: func() any { return &model.Post{} }, column: "likes_count",
		count: countWhere(&model.PostLike{}, "post_id = ?"),
	},
	CounterPostComments: {
		owner: func() any { return &model.Post{} }, column: "comments_count",
		count: countWhere(&model.Comment{}, "post_id = ? AND is_deleted = ?", false),
	},
	CounterPostCollections: {
		owner: func() any { return &model.Post{} }, column: "collections_count",
		count: countWhere(&model.PostCollection{}, "post_id = ?"),
	},
	CounterCommentLikes: {
		owner: func() any { return &model.Comment{} }, column: "likes_count",
		count: countWhere(&model.CommentLike{}, "comment_id = ?"),
	},
}

// 获赞数 = 作者所有帖子（含已软删）收到的赞 + 所有评论收到的赞
func countUserLikes(tx *gorm.DB, userID string) (int64, error) {
	var postLikes, commentLikes int64
	if err := tx.Model(&model.PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.author_id = ?", userID).
		Count(&postLikes).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&model.CommentLike{}).
		Joins("JOIN comments ON comments.id = comment_likes.comment_id").
		Where("comments.author_id = ?", userID).
		Count(&commentLikes).Error; err != nil {
		return 0, err
	}
	return postLikes + commentLikes, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CounterKinds 全部计数种类
func CounterKinds() []CounterKind {
	return []CounterKind{
		CounterUserFollowers, CounterUserFollowing, CounterUserPosts, CounterUserLikes,
		CounterBoardMembers, CounterBoardFollowers, CounterBoardPosts, CounterBoardTodayPosts,
		CounterPostLikes, CounterPostComments, CounterPostCollections, CounterCommentLikes,
	}
}

// ParseCounterKind 校验外部传入的计数种类
func ParseCounterKind(s string) (CounterKind, error) {
	k := CounterKind(s)
	if _, ok := counterSpecs[k]; !ok {
		return "", fmt.Errorf("unknown counter kind %q", s)
	}
	return k, nil
}

// delta 对计数列做原子增减；减法在 SQL 里截断到 0
func delta(tx *gorm.DB, m any, id, column string, d int64) error {
	expr := gorm.Expr(column+" + ?", d)
	if d < 0 {
		expr = gorm.Expr("CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", d, d)
	}
	return tx.Model(m).Where("id = ?", id).UpdateColumn(column, expr).Error
}

// ReconcileResult 一次全量对账的结果
type ReconcileResult struct {
	Kind     CounterKind `json:"kind"`
	Scanned  int         `json:"scanned"`
	Repaired int         `json:"repaired"`
}

// CounterRepository 计数的只读扫描、重算与批量对账
type CounterRepository interface {
	// Count 实时统计边的数量，不写回
	Count(ctx context.Context, kind CounterKind, ownerID string) (int64, error)
	// Stored 读取当前冗余值
	Stored(ctx context.Context, kind CounterKind, ownerID string) (int64, error)
	// Recompute 统计并写回，返回新值
	Recompute(ctx context.Context, kind CounterKind, ownerID string) (int64, error)
	// ReconcileAll 按 id 顺序分批扫描全部 owner，修正漂移
	ReconcileAll(ctx context.Context, kind CounterKind, batchSize int) (*ReconcileResult, error)
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository { return &counterRepository{db: db} }

func lookupCounter(kind CounterKind) (counterSpec, error) {
	spec, ok := counterSpecs[kind]
	if !ok {
		return counterSpec{}, fmt.Errorf("unknown counter kind %q", kind)
	}
	return spec, nil
}

func (r *counterRepository) Count(ctx context.Context, kind CounterKind, ownerID string) (int64, error) {
	spec, err := lookupCounter(kind)
	if err != nil {
		return 0, err
	}
	if err := ensureRow(r.db.WithContext(ctx), spec.owner(), ownerID); err != nil {
		return 0, wrapErr(err)
	}
	n, err := spec.count(r.db.WithContext(ctx), ownerID)
	return n, wrapErr(err)
}

func (r *counterRepository) Stored(ctx context.Context, kind CounterKind, ownerID string) (int64, error) {
	spec, err := lookupCounter(kind)
	if err != nil {
		return 0, err
	}
	var vals []int64
	if err := r.db.WithContext(ctx).Model(spec.owner()).
		Where("id = ?", ownerID).
		Pluck(spec.column, &vals).Error; err != nil {
		return 0, wrapErr(err)
	}
	if len(vals) == 0 {
		return 0, ErrNotFound
	}
	return vals[0], nil
}

func (r *counterRepository) Recompute(ctx context.Context, kind CounterKind, ownerID string) (int64, error) {
	spec, err := lookupCounter(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, spec.owner(), ownerID); err != nil {
			return err
		}
		var err error
		n, err = recomputeTx(tx, spec, ownerID)
		return err
	})
	return n, wrapErr(err)
}

func recomputeTx(tx *gorm.DB, spec counterSpec, ownerID string) (int64, error) {
	n, err := spec.count(tx, ownerID)
	if err != nil {
		return 0, err
	}
	if err := tx.Model(spec.owner()).Where("id = ?", ownerID).UpdateColumn(spec.column, n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

type counterPair struct {
	ID    string
	Value int64
}

func (r *counterRepository) ReconcileAll(ctx context.Context, kind CounterKind, batchSize int) (*ReconcileResult, error) {
	spec, err := lookupCounter(kind)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	res := &ReconcileResult{Kind: kind}
	lastID := ""
	for {
		var batch []counterPair
		if err := r.db.WithContext(ctx).Model(spec.owner()).
			Select(fmt.Sprintf("id, %s AS value", spec.column)).
			Where("id > ?", lastID).
			Order("id ASC").
			Limit(batchSize).
			Scan(&batch).Error; err != nil {
			return res, wrapErr(err)
		}
		if len(batch) == 0 {
			return res, nil
		}
		for _, p := range batch {
			var real int64
			err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				var err error
				real, err = recomputeTx(tx, spec, p.ID)
				return err
			})
			if err != nil {
				return res, wrapErr(err)
			}
			res.Scanned++
			if real != p.Value {
				res.Repaired++
			}
		}
		lastID = batch[len(batch)-1].ID
	}
}

// ensureRow 按主键确认记录存在（不区分软删）
func ensureRow(tx *gorm.DB, m any, id string) error {
	return countOrNotFound(tx.Model(m).Where("id = ?", id))
}

// ensureLive 记录存在且未被软删
func ensureLive(tx *gorm.DB, m any, id string) error {
	q := tx.Model(m).Where("id = ?", id)
	switch m.(type) {
	case *model.Post, *model.Comment:
		q = q.Where("is_deleted = ?", false)
	}
	return countOrNotFound(q)
}

func countOrNotFound(q *gorm.DB) error {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
