package model

import "time"

// Board 贴吧
type Board struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name            string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	OwnerID         string    `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	MembersCount    int64     `gorm:"not null;default:0;index" json:"members_count"`
	FollowersCount  int64     `gorm:"not null;default:0" json:"followers_count"`
	PostsCount      int64     `gorm:"not null;default:0" json:"posts_count"`
	TodayPostsCount int64     `gorm:"not null;default:0" json:"today_posts_count"`
	IsPrivate       bool      `gorm:"not null;default:false" json:"is_private"`
	JoinNeedApprove bool      `gorm:"not null;default:false" json:"join_need_approve"`
	PostNeedApprove bool      `gorm:"not null;default:false" json:"post_need_approve"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Board) TableName() string { return "boards" }

// BoardMember 贴吧成员；level/experience 仅做展示
type BoardMember struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	BoardID    string    `gorm:"type:varchar(36);not null;index:idx_board_member_pair,unique" json:"board_id"`
	UserID     string    `gorm:"type:varchar(36);not null;index:idx_board_member_pair,unique;index:idx_board_member_user" json:"user_id"`
	Role       Role      `gorm:"type:smallint;not null" json:"role"`
	Nickname   string    `gorm:"type:varchar(64)" json:"nickname,omitempty"`
	Level      int       `gorm:"not null;default:1" json:"level"`
	Experience int       `gorm:"not null;default:0" json:"experience"`
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (BoardMember) TableName() string { return "board_members" }

// BoardFollow 关注贴吧（不加入）
type BoardFollow struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_board_follow_pair,unique" json:"user_id"`
	BoardID   string    `gorm:"type:varchar(36);not null;index:idx_board_follow_pair,unique;index:idx_board_follow_board" json:"board_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (BoardFollow) TableName() string { return "board_follows" }
