package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/internal/model"
)

type CommentRepository interface {
	// Create 评论数 +1 并刷新帖子的最后回复时间；楼中楼的父评论必须属于同一帖子
	Create(ctx context.Context, c *model.Comment) error
	Get(ctx context.Context, id string) (*model.Comment, error)
	// OwnerOf 返回 (post_id, author_id)
	OwnerOf(ctx context.Context, commentID string) (string, string, error)
	SoftDelete(ctx context.Context, id string) error
	ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Comment, error)
	ListReplies(ctx context.Context, parentID string, offset, limit int) ([]*model.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureLive(tx, &model.Post{}, c.PostID); err != nil {
			return err
		}
		if err := ensureRow(tx, &model.User{}, c.AuthorID); err != nil {
			return err
		}
		if c.ParentID != nil {
			var n int64
			if err := tx.Model(&model.Comment{}).
				Where("id = ? AND post_id = ? AND is_deleted = ?", *c.ParentID, c.PostID, false).
				Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
		}
		if c.ReplyToID != nil {
			if err := ensureRow(tx, &model.User{}, *c.ReplyToID); err != nil {
				return err
			}
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if err := delta(tx, &model.Post{}, c.PostID, "comments_count", 1); err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", c.PostID).UpdateColumn("last_reply_at", time.Now()).Error
	})
	return wrapErr(err)
}

func (r *commentRepository) Get(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&c).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &c, nil
}

func (r *commentRepository) OwnerOf(ctx context.Context, commentID string) (string, string, error) {
	c, err := r.Get(ctx, commentID)
	if err != nil {
		return "", "", err
	}
	return c.PostID, c.AuthorID, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Comment
		if err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&c).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Comment{}).Where("id = ? AND is_deleted = ?", id, false).UpdateColumn("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return delta(tx, &model.Post{}, c.PostID, "comments_count", -1)
	})
	return wrapErr(err)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Comment, error) {
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND is_deleted = ?", postID, false).
		Order("created_at ASC").Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID string, offset, limit int) ([]*model.Comment, error) {
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND is_deleted = ?", parentID, false).
		Order("created_at ASC").Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}
