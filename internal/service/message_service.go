package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
)

// SessionView 当前用户视角的会话
type SessionView struct {
	ID            string  `json:"id"`
	OtherUserID   string  `json:"other_user_id"`
	Unread        int64   `json:"unread"`
	LastMessageID *string `json:"last_message_id,omitempty"`
	UpdatedAt     string  `json:"updated_at"`
}

// MessageStats 顶栏角标
type MessageStats struct {
	UnreadMessages      int64 `json:"unread_messages"`
	UnreadNotifications int64 `json:"unread_notifications"`
	Sessions            int64 `json:"sessions"`
}

type MessageService interface {
	// Send 找到或创建会话后追加消息
	Send(ctx context.Context, senderID, receiverID, msgType, content string) (*model.Message, error)
	Sessions(ctx context.Context, userID string, page, pageSize int) ([]SessionView, error)
	Messages(ctx context.Context, sessionID, userID string, page, pageSize int) ([]*model.Message, error)
	MarkRead(ctx context.Context, sessionID, userID string) (int64, error)
	DeleteMessage(ctx context.Context, messageID, userID string) error
	Stats(ctx context.Context, userID string) (*MessageStats, error)
}

type messageService struct {
	sessions      repository.SessionRepository
	notifications repository.NotificationRepository
}

func NewMessageService(sessions repository.SessionRepository, notifications repository.NotificationRepository) MessageService {
	return &messageService{sessions: sessions, notifications: notifications}
}

// ValidMessageType 私信类型白名单
func ValidMessageType(t string) bool {
	switch t {
	case model.MessageTypeText, model.MessageTypeImage, model.MessageTypeSystem:
		return true
	}
	return false
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID, msgType, content string) (*model.Message, error) {
	if msgType == "" {
		msgType = model.MessageTypeText
	}
	if !ValidMessageType(msgType) {
		return nil, fmt.Errorf("%w: message type %q", ErrInvalidArgument, msgType)
	}
	body := sanitizePlain(content)
	if body == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidArgument)
	}
	sess, err := s.sessions.GetOrCreateSession(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	return s.sessions.AppendMessage(ctx, sess.ID, senderID, msgType, body)
}

func (s *messageService) Sessions(ctx context.Context, userID string, page, pageSize int) ([]SessionView, error) {
	offset, limit := offsetLimit(page, pageSize)
	list, err := s.sessions.ListSessions(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	res := make([]SessionView, 0, len(list))
	for _, sess := range list {
		other, _ := sess.Other(userID)
		res = append(res, SessionView{
			ID:            sess.ID,
			OtherUserID:   other,
			Unread:        sess.UnreadFor(userID),
			LastMessageID: sess.LastMessageID,
			UpdatedAt:     sess.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res, nil
}

func (s *messageService) Messages(ctx context.Context, sessionID, userID string, page, pageSize int) ([]*model.Message, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.sessions.ListMessages(ctx, sessionID, userID, offset, limit)
}

func (s *messageService) MarkRead(ctx context.Context, sessionID, userID string) (int64, error) {
	return s.sessions.MarkRead(ctx, sessionID, userID)
}

func (s *messageService) DeleteMessage(ctx context.Context, messageID, userID string) error {
	return s.sessions.DeleteMessage(ctx, messageID, userID)
}

func (s *messageService) Stats(ctx context.Context, userID string) (*MessageStats, error) {
	var stats MessageStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.sessions.UnreadTotal(ctx, userID)
		stats.UnreadMessages = n
		return err
	})
	g.Go(func() error {
		n, err := s.notifications.CountUnread(ctx, userID)
		stats.UnreadNotifications = n
		return err
	})
	g.Go(func() error {
		n, err := s.sessions.CountSessions(ctx, userID)
		stats.Sessions = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
