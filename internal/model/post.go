package model

import "time"

// Post 帖子；删除为软删除，计数随之回退
type Post struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	BoardID          string    `gorm:"type:varchar(36);not null;index:idx_post_board" json:"board_id"`
	AuthorID         string    `gorm:"type:varchar(36);not null;index:idx_post_author" json:"author_id"`
	Title            string    `gorm:"type:varchar(200);not null" json:"title"`
	Content          string    `gorm:"type:text" json:"content"`
	Tags             string    `gorm:"type:varchar(200)" json:"tags,omitempty"`
	ViewsCount       int64     `gorm:"not null;default:0" json:"views_count"`
	LikesCount       int64     `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount    int64     `gorm:"not null;default:0" json:"comments_count"`
	SharesCount      int64     `gorm:"not null;default:0" json:"shares_count"`
	CollectionsCount int64     `gorm:"not null;default:0" json:"collections_count"`
	IsTop            bool      `gorm:"not null;default:false" json:"is_top"`
	IsEssence        bool      `gorm:"not null;default:false" json:"is_essence"`
	IsDeleted        bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	LastReplyAt      time.Time `json:"last_reply_at"`
}

func (Post) TableName() string { return "posts" }

// Comment 评论，ParentID 指向楼中楼的父评论
type Comment struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID     string    `gorm:"type:varchar(36);not null;index" json:"post_id"`
	AuthorID   string    `gorm:"type:varchar(36);not null;index" json:"author_id"`
	ParentID   *string   `gorm:"type:varchar(36);index" json:"parent_id,omitempty"`
	ReplyToID  *string   `gorm:"type:varchar(36)" json:"reply_to_id,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	LikesCount int64     `gorm:"not null;default:0" json:"likes_count"`
	IsDeleted  bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }

// PostLike 帖子点赞；存在即事实
type PostLike struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);not null;index:idx_post_like_pair,unique" json:"post_id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_post_like_pair,unique;index:idx_post_like_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostLike) TableName() string { return "post_likes" }

type CommentLike struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CommentID string    `gorm:"type:varchar(36);not null;index:idx_comment_like_pair,unique" json:"comment_id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_comment_like_pair,unique;index:idx_comment_like_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentLike) TableName() string { return "comment_likes" }

// PostCollection 帖子收藏
type PostCollection struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);not null;index:idx_post_collection_pair,unique" json:"post_id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_post_collection_pair,unique;index:idx_post_collection_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostCollection) TableName() string { return "post_collections" }
