package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tieba/internal/model"
)

// BoardSettings 吧主可修改的字段
type BoardSettings struct {
	Description     *string
	IsPrivate       *bool
	JoinNeedApprove *bool
	PostNeedApprove *bool
}

type BoardRepository interface {
	// Create 建吧，同一事务内写入吧主成员关系，members_count 从 1 开始
	Create(ctx context.Context, b *model.Board) error
	Get(ctx context.Context, id string) (*model.Board, error)
	UpdateSettings(ctx context.Context, id string, s BoardSettings) (*model.Board, error)
	ListPopular(ctx context.Context, offset, limit int) ([]*model.Board, error)
	// ListRecommended 用户尚未加入的公开吧，按成员数排序
	ListRecommended(ctx context.Context, userID string, offset, limit int) ([]*model.Board, error)
	ListMembers(ctx context.Context, boardID string, offset, limit int) ([]*model.BoardMember, error)
	ListJoined(ctx context.Context, userID string, offset, limit int) ([]*model.Board, error)
	ListFollowed(ctx context.Context, userID string, offset, limit int) ([]*model.Board, error)
	// Delete 显式级联删除，仅吧主可操作
	Delete(ctx context.Context, boardID, actorID string) error
}

type boardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) BoardRepository { return &boardRepository{db: db} }

func (r *boardRepository) Create(ctx context.Context, b *model.Board) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, &model.User{}, b.OwnerID); err != nil {
			return err
		}
		b.MembersCount = 0
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(b)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyExists
		}
		owner := &model.BoardMember{
			ID:       uuid.New().String(),
			BoardID:  b.ID,
			UserID:   b.OwnerID,
			Role:     model.RoleOwner,
			Level:    1,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}
		if err := delta(tx, &model.Board{}, b.ID, "members_count", 1); err != nil {
			return err
		}
		b.MembersCount = 1
		return nil
	})
	return wrapErr(err)
}

func (r *boardRepository) Get(ctx context.Context, id string) (*model.Board, error) {
	var b model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &b, nil
}

func (r *boardRepository) UpdateSettings(ctx context.Context, id string, s BoardSettings) (*model.Board, error) {
	changes := map[string]any{}
	if s.Description != nil {
		changes["description"] = *s.Description
	}
	if s.IsPrivate != nil {
		changes["is_private"] = *s.IsPrivate
	}
	if s.JoinNeedApprove != nil {
		changes["join_need_approve"] = *s.JoinNeedApprove
	}
	if s.PostNeedApprove != nil {
		changes["post_need_approve"] = *s.PostNeedApprove
	}
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&model.Board{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, wrapErr(res.Error)
		}
	}
	return r.Get(ctx, id)
}

func (r *boardRepository) ListPopular(ctx context.Context, offset, limit int) ([]*model.Board, error) {
	var res []*model.Board
	err := r.db.WithContext(ctx).
		Where("is_private = ?", false).
		Order("members_count DESC").Order("created_at ASC").
		Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *boardRepository) ListRecommended(ctx context.Context, userID string, offset, limit int) ([]*model.Board, error) {
	var res []*model.Board
	joined := r.db.Model(&model.BoardMember{}).Select("board_id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Where("is_private = ?", false).
		Where("id NOT IN (?)", joined).
		Order("members_count DESC").Order("created_at ASC").
		Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *boardRepository) ListMembers(ctx context.Context, boardID string, offset, limit int) ([]*model.BoardMember, error) {
	var res []*model.BoardMember
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).
		Order("role DESC").Order("joined_at ASC").
		Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *boardRepository) ListJoined(ctx context.Context, userID string, offset, limit int) ([]*model.Board, error) {
	var res []*model.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ?", userID).
		Order("board_members.joined_at DESC").
		Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *boardRepository) ListFollowed(ctx context.Context, userID string, offset, limit int) ([]*model.Board, error) {
	var res []*model.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_follows ON board_follows.board_id = boards.id").
		Where("board_follows.user_id = ?", userID).
		Order("board_follows.created_at DESC").
		Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

// Delete 依次删除：评论点赞 -> 帖子点赞/收藏 -> 评论 -> 帖子 -> 关注 -> 成员 -> 贴吧，
// 最后在同一事务内重算受影响作者的发帖数与获赞数。
func (r *boardRepository) Delete(ctx context.Context, boardID, actorID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, &model.Board{}, boardID); err != nil {
			return err
		}
		role, err := roleTx(tx, boardID, actorID)
		if err != nil {
			return err
		}
		if !role.AtLeast(actionMinRole[ActionDeleteBoard]) {
			return ErrForbidden
		}

		var postIDs, commentIDs, authors []string
		if err := tx.Model(&model.Post{}).Where("board_id = ?", boardID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Model(&model.Comment{}).Where("post_id IN ?", postIDs).Pluck("id", &commentIDs).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Post{}).Distinct("author_id").Where("id IN ?", postIDs).Pluck("author_id", &authors).Error; err != nil {
				return err
			}
		}
		if len(commentIDs) > 0 {
			var commentAuthors []string
			if err := tx.Model(&model.Comment{}).Distinct("author_id").Where("id IN ?", commentIDs).Pluck("author_id", &commentAuthors).Error; err != nil {
				return err
			}
			authors = append(authors, commentAuthors...)
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&model.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&model.Comment{}).Error; err != nil {
				return err
			}
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.PostLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.PostCollection{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&model.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&model.BoardFollow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&model.BoardMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", boardID).Delete(&model.Board{}).Error; err != nil {
			return err
		}

		seen := make(map[string]struct{}, len(authors))
		for _, uid := range authors {
			if _, ok := seen[uid]; ok {
				continue
			}
			seen[uid] = struct{}{}
			for _, kind := range []CounterKind{CounterUserPosts, CounterUserLikes} {
				if _, err := recomputeTx(tx, counterSpecs[kind], uid); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return wrapErr(err)
}
