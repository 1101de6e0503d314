package model

import "time"

// NotificationType 通知类型
type NotificationType string

const (
	NotifyReply   NotificationType = "reply"
	NotifyMention NotificationType = "mention"
	NotifyLike    NotificationType = "like"
	NotifyFollow  NotificationType = "follow"
	NotifySystem  NotificationType = "system"
	NotifyBoard   NotificationType = "board"
)

// Valid 是否为已知类型
func (t NotificationType) Valid() bool {
	switch t {
	case NotifyReply, NotifyMention, NotifyLike, NotifyFollow, NotifySystem, NotifyBoard:
		return true
	}
	return false
}

// Notification 通知；Related* 为弱引用，目标删除后保留原值
type Notification struct {
	ID               string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID           string           `gorm:"type:varchar(36);not null;index:idx_notification_user" json:"user_id"`
	Type             NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	Title            string           `gorm:"type:varchar(200)" json:"title"`
	Content          string           `gorm:"type:text" json:"content"`
	RelatedPostID    *string          `gorm:"type:varchar(36)" json:"related_post_id,omitempty"`
	RelatedCommentID *string          `gorm:"type:varchar(36)" json:"related_comment_id,omitempty"`
	RelatedUserID    *string          `gorm:"type:varchar(36)" json:"related_user_id,omitempty"`
	IsRead           bool             `gorm:"not null;default:false;index:idx_notification_user" json:"is_read"`
	ReadAt           *time.Time       `json:"read_at,omitempty"`
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationSettings 每个用户一行的通知开关
type NotificationSettings struct {
	UserID          string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	NotifyOnReply   bool      `gorm:"not null" json:"notify_on_reply"`
	NotifyOnMention bool      `gorm:"not null" json:"notify_on_mention"`
	NotifyOnLike    bool      `gorm:"not null" json:"notify_on_like"`
	NotifyOnFollow  bool      `gorm:"not null" json:"notify_on_follow"`
	NotifyOnSystem  bool      `gorm:"not null" json:"notify_on_system"`
	NotifyOnBoard   bool      `gorm:"not null" json:"notify_on_board"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (NotificationSettings) TableName() string { return "notification_settings" }

// DefaultNotificationSettings 全部开启
func DefaultNotificationSettings(userID string) NotificationSettings {
	return NotificationSettings{
		UserID:          userID,
		NotifyOnReply:   true,
		NotifyOnMention: true,
		NotifyOnLike:    true,
		NotifyOnFollow:  true,
		NotifyOnSystem:  true,
		NotifyOnBoard:   true,
	}
}

// Allows 该类型是否允许投递
func (s NotificationSettings) Allows(t NotificationType) bool {
	switch t {
	case NotifyReply:
		return s.NotifyOnReply
	case NotifyMention:
		return s.NotifyOnMention
	case NotifyLike:
		return s.NotifyOnLike
	case NotifyFollow:
		return s.NotifyOnFollow
	case NotifySystem:
		return s.NotifyOnSystem
	case NotifyBoard:
		return s.NotifyOnBoard
	}
	return false
}
