package model

import "time"

// MessageSession 两个用户之间唯一的私信会话。
// 用户对按字典序存放：UserLowID < UserHighID，(low, high) 唯一，
// 因此 (A,B) 与 (B,A) 命中同一行。
type MessageSession struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserLowID     string    `gorm:"type:varchar(36);not null;index:idx_session_pair,unique" json:"user_low_id"`
	UserHighID    string    `gorm:"type:varchar(36);not null;index:idx_session_pair,unique;index:idx_session_high" json:"user_high_id"`
	UnreadLow     int64     `gorm:"not null;default:0" json:"unread_low"`
	UnreadHigh    int64     `gorm:"not null;default:0" json:"unread_high"`
	LastMessageID *string   `gorm:"type:varchar(36)" json:"last_message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`
}

func (MessageSession) TableName() string { return "message_sessions" }

// Has 是否为会话参与者
func (s *MessageSession) Has(userID string) bool {
	return userID == s.UserLowID || userID == s.UserHighID
}

// Other 返回另一方；userID 不是参与者时 ok=false
func (s *MessageSession) Other(userID string) (string, bool) {
	switch userID {
	case s.UserLowID:
		return s.UserHighID, true
	case s.UserHighID:
		return s.UserLowID, true
	}
	return "", false
}

// UnreadFor 参与者的未读数
func (s *MessageSession) UnreadFor(userID string) int64 {
	if userID == s.UserLowID {
		return s.UnreadLow
	}
	if userID == s.UserHighID {
		return s.UnreadHigh
	}
	return 0
}

// UnreadColumn 参与者对应的未读计数列
func (s *MessageSession) UnreadColumn(userID string) string {
	if userID == s.UserLowID {
		return "unread_low"
	}
	return "unread_high"
}

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
)

type Message struct {
	ID                  string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID           string     `gorm:"type:varchar(36);not null;index:idx_message_session" json:"session_id"`
	SenderID            string     `gorm:"type:varchar(36);not null;index" json:"sender_id"`
	ReceiverID          string     `gorm:"type:varchar(36);not null;index:idx_message_receiver" json:"receiver_id"`
	Type                string     `gorm:"type:varchar(16);not null" json:"type"`
	Content             string     `gorm:"type:text;not null" json:"content"`
	IsRead              bool       `gorm:"not null;default:false;index:idx_message_receiver" json:"is_read"`
	ReadAt              *time.Time `json:"read_at,omitempty"`
	IsDeletedBySender   bool       `gorm:"not null;default:false" json:"-"`
	IsDeletedByReceiver bool       `gorm:"not null;default:false" json:"-"`
	CreatedAt           time.Time  `gorm:"index:idx_message_session" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
