package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/internal/model"
)

// FollowRepository 关注关系的读路径；写入统一走 EdgeRepository
type FollowRepository interface {
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error)
	ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]*model.Follow, error)
	// IsMutual 互相关注
	IsMutual(ctx context.Context, a, b string) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, wrapErr(err)
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).Where("follower_id = ?", followerID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).Where("followee_id = ?", followeeID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *followRepository) IsMutual(ctx context.Context, a, b string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)", a, b, b, a).
		Count(&cnt).Error; err != nil {
		return false, wrapErr(err)
	}
	return cnt == 2, nil
}
