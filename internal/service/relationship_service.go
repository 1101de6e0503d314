package service

import (
	"context"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID string) error
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	IsFollowing(ctx context.Context, fromUserID, toUserID string) (bool, error)
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error)
}

type relationshipService struct {
	edges      repository.EdgeRepository
	followRepo repository.FollowRepository
	notifier   Notifier
}

func NewRelationshipService(edges repository.EdgeRepository, followRepo repository.FollowRepository, notifier Notifier) RelationshipService {
	return &relationshipService{edges: edges, followRepo: followRepo, notifier: orNop(notifier)}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
	if _, err := s.edges.AddEdge(ctx, repository.EdgeFollow, fromUserID, toUserID); err != nil {
		return err
	}
	s.notifier.Notify(toUserID, model.NotifyFollow, Payload{ActorID: fromUserID, Title: "新粉丝"})
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	return s.edges.RemoveEdge(ctx, repository.EdgeFollow, fromUserID, toUserID)
}

func (s *relationshipService) IsFollowing(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	return s.followRepo.Exists(ctx, fromUserID, toUserID)
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, limit := offsetLimit(page, pageSize)
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FolloweeID
	}
	return res, nil
}

func (s *relationshipService) ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, limit := offsetLimit(page, pageSize)
	items, err := s.followRepo.ListFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FollowerID
	}
	return res, nil
}
