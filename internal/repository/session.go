package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tieba/internal/model"
)

// SessionRepository 私信会话与消息账本
type SessionRepository interface {
	// GetOrCreateSession 参数顺序无关，并发创建收敛到同一行
	GetOrCreateSession(ctx context.Context, userA, userB string) (*model.MessageSession, error)
	GetSession(ctx context.Context, sessionID string) (*model.MessageSession, error)
	// AppendMessage 写消息并给接收方未读 +1
	AppendMessage(ctx context.Context, sessionID, senderID, msgType, body string) (*model.Message, error)
	// MarkRead 清零 reader 的未读并标记消息已读，返回标记条数
	MarkRead(ctx context.Context, sessionID, readerID string) (int64, error)
	ListSessions(ctx context.Context, userID string, offset, limit int) ([]*model.MessageSession, error)
	ListMessages(ctx context.Context, sessionID, readerID string, offset, limit int) ([]*model.Message, error)
	// DeleteMessage 单方删除；接收方删除未读消息时同时视为已读
	DeleteMessage(ctx context.Context, messageID, userID string) error
	UnreadTotal(ctx context.Context, userID string) (int64, error)
	CountSessions(ctx context.Context, userID string) (int64, error)
	RecomputeUnread(ctx context.Context, sessionID, userID string) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepository{db: db} }

// orderPair 会话用户对按字典序存放
func orderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func (r *sessionRepository) GetOrCreateSession(ctx context.Context, userA, userB string) (*model.MessageSession, error) {
	if userA == userB {
		return nil, ErrSelfReference
	}
	low, high := orderPair(userA, userB)
	var s model.MessageSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, &model.User{}, low); err != nil {
			return err
		}
		if err := ensureRow(tx, &model.User{}, high); err != nil {
			return err
		}
		row := &model.MessageSession{ID: uuid.New().String(), UserLowID: low, UserHighID: high}
		// 竞争失败的一方插入 0 行，随后读到胜者的记录
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return err
		}
		return tx.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&s).Error
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return &s, nil
}

func (r *sessionRepository) GetSession(ctx context.Context, sessionID string) (*model.MessageSession, error) {
	var s model.MessageSession
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&s).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &s, nil
}

func (r *sessionRepository) AppendMessage(ctx context.Context, sessionID, senderID, msgType, body string) (*model.Message, error) {
	if msgType == "" {
		msgType = model.MessageTypeText
	}
	var msg *model.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.MessageSession
		if err := tx.Where("id = ?", sessionID).First(&s).Error; err != nil {
			return err
		}
		receiver, ok := s.Other(senderID)
		if !ok {
			return ErrForbidden
		}
		now := time.Now()
		msg = &model.Message{
			ID:         uuid.New().String(),
			SessionID:  s.ID,
			SenderID:   senderID,
			ReceiverID: receiver,
			Type:       msgType,
			Content:    body,
			CreatedAt:  now,
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		col := s.UnreadColumn(receiver)
		return tx.Model(&model.MessageSession{}).Where("id = ?", s.ID).UpdateColumns(map[string]any{
			col:               gorm.Expr(col + " + 1"),
			"last_message_id": msg.ID,
			"updated_at":      now,
		}).Error
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return msg, nil
}

func (r *sessionRepository) MarkRead(ctx context.Context, sessionID, readerID string) (int64, error) {
	var stamped int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.MessageSession
		if err := tx.Where("id = ?", sessionID).First(&s).Error; err != nil {
			return err
		}
		if !s.Has(readerID) {
			return ErrForbidden
		}
		// 先写会话行拿到行锁，并发的 AppendMessage 会排在本事务之后
		if err := tx.Model(&model.MessageSession{}).Where("id = ?", s.ID).
			UpdateColumn(s.UnreadColumn(readerID), 0).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Message{}).
			Where("session_id = ? AND receiver_id = ? AND is_read = ?", s.ID, readerID, false).
			UpdateColumns(map[string]any{"is_read": true, "read_at": time.Now()})
		stamped = res.RowsAffected
		return res.Error
	})
	return stamped, wrapErr(err)
}

func (r *sessionRepository) ListSessions(ctx context.Context, userID string, offset, limit int) ([]*model.MessageSession, error) {
	var res []*model.MessageSession
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("updated_at DESC").Offset(offset).Limit(limit).
		Find(&res).Error
	return res, wrapErr(err)
}

func (r *sessionRepository) ListMessages(ctx context.Context, sessionID, readerID string, offset, limit int) ([]*model.Message, error) {
	s, err := r.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Has(readerID) {
		return nil, ErrForbidden
	}
	var res []*model.Message
	err = r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Where("(sender_id = ? AND is_deleted_by_sender = ?) OR (receiver_id = ? AND is_deleted_by_receiver = ?)",
			readerID, false, readerID, false).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&res).Error
	return res, wrapErr(err)
}

func (r *sessionRepository) DeleteMessage(ctx context.Context, messageID, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Message
		if err := tx.Where("id = ?", messageID).First(&m).Error; err != nil {
			return err
		}
		switch userID {
		case m.SenderID:
			return tx.Model(&model.Message{}).Where("id = ?", m.ID).
				UpdateColumn("is_deleted_by_sender", true).Error
		case m.ReceiverID:
		default:
			return ErrForbidden
		}
		// 只有本次把消息从未读翻成已读才扣未读数
		res := tx.Model(&model.Message{}).Where("id = ? AND is_read = ?", m.ID, false).UpdateColumns(map[string]any{
			"is_deleted_by_receiver": true,
			"is_read":                true,
			"read_at":                time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Model(&model.Message{}).Where("id = ?", m.ID).
				UpdateColumn("is_deleted_by_receiver", true).Error
		}
		var s model.MessageSession
		if err := tx.Where("id = ?", m.SessionID).First(&s).Error; err != nil {
			return err
		}
		return delta(tx, &model.MessageSession{}, s.ID, s.UnreadColumn(userID), -1)
	})
	return wrapErr(err)
}

func (r *sessionRepository) UnreadTotal(ctx context.Context, userID string) (int64, error) {
	var total struct{ N int64 }
	err := r.db.WithContext(ctx).Model(&model.MessageSession{}).
		Select("COALESCE(SUM(CASE WHEN user_low_id = ? THEN unread_low ELSE unread_high END), 0) AS n", userID).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Scan(&total).Error
	return total.N, wrapErr(err)
}

func (r *sessionRepository) CountSessions(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.MessageSession{}).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Count(&n).Error
	return n, wrapErr(err)
}

func (r *sessionRepository) RecomputeUnread(ctx context.Context, sessionID, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.MessageSession
		if err := tx.Where("id = ?", sessionID).First(&s).Error; err != nil {
			return err
		}
		if !s.Has(userID) {
			return ErrForbidden
		}
		if err := tx.Model(&model.Message{}).
			Where("session_id = ? AND receiver_id = ? AND is_read = ?", s.ID, userID, false).
			Count(&n).Error; err != nil {
			return err
		}
		return tx.Model(&model.MessageSession{}).Where("id = ?", s.ID).
			UpdateColumn(s.UnreadColumn(userID), n).Error
	})
	return n, wrapErr(err)
}
