package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tieba/internal/model"
)

// NotificationFilter 列表过滤条件，零值表示不过滤
type NotificationFilter struct {
	Type   model.NotificationType
	Unread bool
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID string, f NotificationFilter, offset, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead 只会标记属于 userID 的通知
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	// Settings 没有记录时返回全部开启的默认值
	Settings(ctx context.Context, userID string) (*model.NotificationSettings, error)
	SaveSettings(ctx context.Context, s *model.NotificationSettings) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return wrapErr(r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepository) List(ctx context.Context, userID string, f NotificationFilter, offset, limit int) ([]*model.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Unread {
		q = q.Where("is_read = ?", false)
	}
	var res []*model.Notification
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, wrapErr(err)
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, wrapErr(err)
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ? AND id IN ?", userID, false, ids).
		UpdateColumns(map[string]any{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		UpdateColumns(map[string]any{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *notificationRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Notification{})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) Settings(ctx context.Context, userID string) (*model.NotificationSettings, error) {
	var rows []model.NotificationSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	if len(rows) == 0 {
		s := model.DefaultNotificationSettings(userID)
		return &s, nil
	}
	return &rows[0], nil
}

func (r *notificationRepository) SaveSettings(ctx context.Context, s *model.NotificationSettings) error {
	s.UpdatedAt = time.Now()
	// Select("*") 保证 false 也会被写入
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, UpdateAll: true}).
		Select("*").Create(s).Error
	return wrapErr(err)
}
