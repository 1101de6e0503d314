package service

import (
	"context"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
)

type NotificationService interface {
	List(ctx context.Context, userID string, f repository.NotificationFilter, page, pageSize int) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	Settings(ctx context.Context, userID string) (*model.NotificationSettings, error)
	UpdateSettings(ctx context.Context, s *model.NotificationSettings) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID string, f repository.NotificationFilter, page, pageSize int) ([]*model.Notification, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.repo.List(ctx, userID, f, offset, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	return s.repo.MarkRead(ctx, userID, ids)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *notificationService) Settings(ctx context.Context, userID string) (*model.NotificationSettings, error) {
	return s.repo.Settings(ctx, userID)
}

func (s *notificationService) UpdateSettings(ctx context.Context, settings *model.NotificationSettings) error {
	return s.repo.SaveSettings(ctx, settings)
}
