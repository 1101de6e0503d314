package model

import "time"

// Follow 关注关系（A 关注 B），只增删、不更新
type Follow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID string `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique" json:"follower_id"`
	FolloweeID string `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique;index:idx_follow_followee" json:"followee_id"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (follower_id, followee_id)
	CreatedAt time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
