package model

import "time"

// User 用户；四个计数字段均为冗余值，只由关系边的增删维护
type User struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Nickname       string    `gorm:"type:varchar(64)" json:"nickname"`
	Email          string    `gorm:"type:varchar(128);index" json:"email,omitempty"`
	Password       string    `gorm:"type:varchar(255);not null" json:"-"`
	Bio            string    `gorm:"type:text" json:"bio,omitempty"`
	FollowersCount int64     `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int64     `gorm:"not null;default:0" json:"following_count"`
	PostsCount     int64     `gorm:"not null;default:0" json:"posts_count"`
	LikesCount     int64     `gorm:"not null;default:0" json:"likes_count"` // 获赞数（帖子 + 评论）
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
