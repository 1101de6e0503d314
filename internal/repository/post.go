package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/internal/model"
)

// FeedLimit 首页信息流最多返回的条数
const FeedLimit = 50

type PostRepository interface {
	// Create 发帖：贴吧发帖数、今日发帖数、作者发帖数同事务 +1
	Create(ctx context.Context, p *model.Post) error
	Get(ctx context.Context, id string) (*model.Post, error)
	// OwnerOf 返回 (board_id, author_id)
	OwnerOf(ctx context.Context, postID string) (string, string, error)
	IncrViews(ctx context.Context, id string) error
	IncrShares(ctx context.Context, id string) error
	// SetFlag 置顶 / 加精，column 只接受 is_top、is_essence
	SetFlag(ctx context.Context, id, column string, on bool) error
	// SoftDelete 软删并回退发帖计数
	SoftDelete(ctx context.Context, id string) error
	ListByBoard(ctx context.Context, boardID string, offset, limit int) ([]*model.Post, error)
	ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*model.Post, error)
	ListCollected(ctx context.Context, userID string, offset, limit int) ([]*model.Post, error)
	// Feed 关注的吧、加入的吧、关注的人的帖子，按时间倒序
	Feed(ctx context.Context, userID string, limit int) ([]*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt, p.LastReplyAt = now, now
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, &model.Board{}, p.BoardID); err != nil {
			return err
		}
		if err := ensureRow(tx, &model.User{}, p.AuthorID); err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		for _, col := range []string{"posts_count", "today_posts_count"} {
			if err := delta(tx, &model.Board{}, p.BoardID, col, 1); err != nil {
				return err
			}
		}
		return delta(tx, &model.User{}, p.AuthorID, "posts_count", 1)
	})
	return wrapErr(err)
}

func (r *postRepository) Get(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&p).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

func (r *postRepository) OwnerOf(ctx context.Context, postID string) (string, string, error) {
	p, err := r.Get(ctx, postID)
	if err != nil {
		return "", "", err
	}
	return p.BoardID, p.AuthorID, nil
}

func (r *postRepository) bump(ctx context.Context, id, column string) error {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) IncrViews(ctx context.Context, id string) error {
	return r.bump(ctx, id, "views_count")
}

func (r *postRepository) IncrShares(ctx context.Context, id string) error {
	return r.bump(ctx, id, "shares_count")
}

func (r *postRepository) SetFlag(ctx context.Context, id, column string, on bool) error {
	if column != "is_top" && column != "is_essence" {
		return ErrForbidden
	}
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumn(column, on)
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		// 0 行：帖子不存在或已删除
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Post
		if err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&p).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Post{}).Where("id = ? AND is_deleted = ?", id, false).UpdateColumn("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := delta(tx, &model.Board{}, p.BoardID, "posts_count", -1); err != nil {
			return err
		}
		if !p.CreatedAt.Before(startOfDay(time.Now())) {
			if err := delta(tx, &model.Board{}, p.BoardID, "today_posts_count", -1); err != nil {
				return err
			}
		}
		return delta(tx, &model.User{}, p.AuthorID, "posts_count", -1)
	})
	return wrapErr(err)
}

func (r *postRepository) ListByBoard(ctx context.Context, boardID string, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND is_deleted = ?", boardID, false).
		Order("is_top DESC").Order("is_essence DESC").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND is_deleted = ?", authorID, false).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *postRepository) ListCollected(ctx context.Context, userID string, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Joins("JOIN post_collections ON post_collections.post_id = posts.id").
		Where("post_collections.user_id = ? AND posts.is_deleted = ?", userID, false).
		Order("post_collections.created_at DESC").
		Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *postRepository) Feed(ctx context.Context, userID string, limit int) ([]*model.Post, error) {
	if limit <= 0 || limit > FeedLimit {
		limit = FeedLimit
	}
	db := r.db.WithContext(ctx)
	followedBoards := db.Model(&model.BoardFollow{}).Select("board_id").Where("user_id = ?", userID)
	joinedBoards := db.Model(&model.BoardMember{}).Select("board_id").Where("user_id = ?", userID)
	followedUsers := db.Model(&model.Follow{}).Select("followee_id").Where("follower_id = ?", userID)

	var res []*model.Post
	err := db.Model(&model.Post{}).
		Where("is_deleted = ?", false).
		Where(db.Where("board_id IN (?)", followedBoards).
			Or("board_id IN (?)", joinedBoards).
			Or("author_id IN (?)", followedUsers)).
		Order("created_at DESC").Limit(limit).
		Find(&res).Error
	return res, wrapErr(err)
}
