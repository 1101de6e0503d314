package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
)

type CreateBoardInput struct {
	Name            string
	Description     string
	IsPrivate       bool
	JoinNeedApprove bool
	PostNeedApprove bool
}

type BoardService interface {
	Create(ctx context.Context, ownerID string, in CreateBoardInput) (*model.Board, error)
	Get(ctx context.Context, boardID string) (*model.Board, error)
	ListPopular(ctx context.Context, page, pageSize int) ([]*model.Board, error)
	ListRecommended(ctx context.Context, userID string, page, pageSize int) ([]*model.Board, error)
	UpdateSettings(ctx context.Context, boardID, actorID string, s repository.BoardSettings) (*model.Board, error)
	Delete(ctx context.Context, boardID, actorID string) error

	// Join 需要审核的吧直接拒绝（审核流程未实现）
	Join(ctx context.Context, boardID, userID string) error
	Leave(ctx context.Context, boardID, userID string) error
	Kick(ctx context.Context, boardID, actorID, targetID string) error
	Follow(ctx context.Context, boardID, userID string) error
	Unfollow(ctx context.Context, boardID, userID string) error

	Promote(ctx context.Context, boardID, actorID, targetID string) (model.Role, error)
	Demote(ctx context.Context, boardID, actorID, targetID string) (model.Role, error)
	RoleOf(ctx context.Context, boardID, userID string) (model.Role, error)

	ListMembers(ctx context.Context, boardID string, page, pageSize int) ([]*model.BoardMember, error)
	ListJoined(ctx context.Context, userID string, page, pageSize int) ([]*model.Board, error)
	ListFollowed(ctx context.Context, userID string, page, pageSize int) ([]*model.Board, error)
}

type boardService struct {
	boards   repository.BoardRepository
	edges    repository.EdgeRepository
	roles    repository.RoleRepository
	notifier Notifier
}

func NewBoardService(boards repository.BoardRepository, edges repository.EdgeRepository, roles repository.RoleRepository, notifier Notifier) BoardService {
	return &boardService{boards: boards, edges: edges, roles: roles, notifier: orNop(notifier)}
}

func (s *boardService) Create(ctx context.Context, ownerID string, in CreateBoardInput) (*model.Board, error) {
	name := sanitizePlain(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: board name required", ErrInvalidArgument)
	}
	b := &model.Board{
		Name:            name,
		Description:     sanitizePlain(in.Description),
		OwnerID:         ownerID,
		IsPrivate:       in.IsPrivate,
		JoinNeedApprove: in.JoinNeedApprove,
		PostNeedApprove: in.PostNeedApprove,
	}
	if err := s.boards.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *boardService) Get(ctx context.Context, boardID string) (*model.Board, error) {
	return s.boards.Get(ctx, boardID)
}

func (s *boardService) ListPopular(ctx context.Context, page, pageSize int) ([]*model.Board, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.boards.ListPopular(ctx, offset, limit)
}

func (s *boardService) ListRecommended(ctx context.Context, userID string, page, pageSize int) ([]*model.Board, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.boards.ListRecommended(ctx, userID, offset, limit)
}

func (s *boardService) UpdateSettings(ctx context.Context, boardID, actorID string, settings repository.BoardSettings) (*model.Board, error) {
	if err := s.roles.Authorize(ctx, boardID, actorID, repository.ActionManageBoard); err != nil {
		return nil, err
	}
	if settings.Description != nil {
		d := sanitizePlain(*settings.Description)
		settings.Description = &d
	}
	return s.boards.UpdateSettings(ctx, boardID, settings)
}

func (s *boardService) Delete(ctx context.Context, boardID, actorID string) error {
	return s.boards.Delete(ctx, boardID, actorID)
}

func (s *boardService) Join(ctx context.Context, boardID, userID string) error {
	b, err := s.boards.Get(ctx, boardID)
	if err != nil {
		return err
	}
	if b.JoinNeedApprove {
		return repository.ErrForbidden
	}
	if _, err := s.edges.AddEdge(ctx, repository.EdgeBoardMembership, boardID, userID); err != nil {
		return err
	}
	s.notifier.Notify(b.OwnerID, model.NotifyBoard, Payload{
		ActorID: userID,
		Title:   "新成员加入",
		Content: b.Name,
	})
	return nil
}

func (s *boardService) Leave(ctx context.Context, boardID, userID string) error {
	return s.edges.RemoveEdge(ctx, repository.EdgeBoardMembership, boardID, userID)
}

func (s *boardService) Kick(ctx context.Context, boardID, actorID, targetID string) error {
	return s.roles.Kick(ctx, boardID, actorID, targetID)
}

func (s *boardService) Follow(ctx context.Context, boardID, userID string) error {
	_, err := s.edges.AddEdge(ctx, repository.EdgeBoardFollow, userID, boardID)
	return err
}

func (s *boardService) Unfollow(ctx context.Context, boardID, userID string) error {
	return s.edges.RemoveEdge(ctx, repository.EdgeBoardFollow, userID, boardID)
}

func (s *boardService) Promote(ctx context.Context, boardID, actorID, targetID string) (model.Role, error) {
	return s.roles.Promote(ctx, boardID, actorID, targetID)
}

func (s *boardService) Demote(ctx context.Context, boardID, actorID, targetID string) (model.Role, error) {
	return s.roles.Demote(ctx, boardID, actorID, targetID)
}

func (s *boardService) RoleOf(ctx context.Context, boardID, userID string) (model.Role, error) {
	return s.roles.RoleOf(ctx, boardID, userID)
}

func (s *boardService) ListMembers(ctx context.Context, boardID string, page, pageSize int) ([]*model.BoardMember, error) {
	if _, err := s.boards.Get(ctx, boardID); err != nil {
		return nil, err
	}
	offset, limit := offsetLimit(page, pageSize)
	return s.boards.ListMembers(ctx, boardID, offset, limit)
}

func (s *boardService) ListJoined(ctx context.Context, userID string, page, pageSize int) ([]*model.Board, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.boards.ListJoined(ctx, userID, offset, limit)
}

func (s *boardService) ListFollowed(ctx context.Context, userID string, page, pageSize int) ([]*model.Board, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.boards.ListFollowed(ctx, userID, offset, limit)
}
