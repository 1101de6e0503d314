package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
)

type PublishInput struct {
	BoardID string
	Title   string
	Content string
	Tags    string
}

// PostService 帖子：发布、浏览、点赞收藏、吧务操作
type PostService interface {
	Publish(ctx context.Context, authorID string, in PublishInput) (*model.Post, error)
	// View 读取并累加浏览数
	View(ctx context.Context, postID string) (*model.Post, error)
	Share(ctx context.Context, postID string) error
	Like(ctx context.Context, postID, userID string) error
	Unlike(ctx context.Context, postID, userID string) error
	Collect(ctx context.Context, postID, userID string) error
	Uncollect(ctx context.Context, postID, userID string) error
	Pin(ctx context.Context, postID, actorID string, on bool) error
	Feature(ctx context.Context, postID, actorID string, on bool) error
	// Delete 作者本人或本吧吧务
	Delete(ctx context.Context, postID, actorID string) error

	ListByBoard(ctx context.Context, boardID string, page, pageSize int) ([]*model.Post, error)
	ListByAuthor(ctx context.Context, authorID string, page, pageSize int) ([]*model.Post, error)
	ListCollected(ctx context.Context, userID string, page, pageSize int) ([]*model.Post, error)
	ListLikers(ctx context.Context, postID string, page, pageSize int) ([]string, error)
	Feed(ctx context.Context, userID string) ([]*model.Post, error)
}

type postService struct {
	posts    repository.PostRepository
	boards   repository.BoardRepository
	edges    repository.EdgeRepository
	roles    repository.RoleRepository
	notifier Notifier
}

func NewPostService(posts repository.PostRepository, boards repository.BoardRepository, edges repository.EdgeRepository,
	roles repository.RoleRepository, notifier Notifier) PostService {
	return &postService{posts: posts, boards: boards, edges: edges, roles: roles, notifier: orNop(notifier)}
}

func (s *postService) Publish(ctx context.Context, authorID string, in PublishInput) (*model.Post, error) {
	title := sanitizePlain(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrInvalidArgument)
	}
	b, err := s.boards.Get(ctx, in.BoardID)
	if err != nil {
		return nil, err
	}
	if b.IsPrivate {
		role, err := s.roles.RoleOf(ctx, b.ID, authorID)
		if err != nil {
			return nil, err
		}
		if !role.AtLeast(model.RoleMember) {
			return nil, repository.ErrForbidden
		}
	}
	p := &model.Post{
		BoardID:  b.ID,
		AuthorID: authorID,
		Title:    title,
		Content:  sanitizeRich(in.Content),
		Tags:     sanitizePlain(in.Tags),
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) View(ctx context.Context, postID string) (*model.Post, error) {
	if err := s.posts.IncrViews(ctx, postID); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, postID)
}

func (s *postService) Share(ctx context.Context, postID string) error {
	return s.posts.IncrShares(ctx, postID)
}

func (s *postService) Like(ctx context.Context, postID, userID string) error {
	if _, err := s.edges.AddEdge(ctx, repository.EdgePostLike, postID, userID); err != nil {
		return err
	}
	if _, authorID, err := s.posts.OwnerOf(ctx, postID); err == nil {
		s.notifier.Notify(authorID, model.NotifyLike, Payload{ActorID: userID, PostID: postID, Title: "帖子被点赞"})
	}
	return nil
}

func (s *postService) Unlike(ctx context.Context, postID, userID string) error {
	return s.edges.RemoveEdge(ctx, repository.EdgePostLike, postID, userID)
}

func (s *postService) Collect(ctx context.Context, postID, userID string) error {
	_, err := s.edges.AddEdge(ctx, repository.EdgePostCollection, postID, userID)
	return err
}

func (s *postService) Uncollect(ctx context.Context, postID, userID string) error {
	return s.edges.RemoveEdge(ctx, repository.EdgePostCollection, postID, userID)
}

func (s *postService) moderate(ctx context.Context, postID, actorID string, action repository.Action, column string, on bool) error {
	boardID, _, err := s.posts.OwnerOf(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.roles.Authorize(ctx, boardID, actorID, action); err != nil {
		return err
	}
	return s.posts.SetFlag(ctx, postID, column, on)
}

func (s *postService) Pin(ctx context.Context, postID, actorID string, on bool) error {
	return s.moderate(ctx, postID, actorID, repository.ActionPinPost, "is_top", on)
}

func (s *postService) Feature(ctx context.Context, postID, actorID string, on bool) error {
	return s.moderate(ctx, postID, actorID, repository.ActionFeaturePost, "is_essence", on)
}

func (s *postService) Delete(ctx context.Context, postID, actorID string) error {
	boardID, authorID, err := s.posts.OwnerOf(ctx, postID)
	if err != nil {
		return err
	}
	if authorID != actorID {
		if err := s.roles.Authorize(ctx, boardID, actorID, repository.ActionDeletePost); err != nil {
			return err
		}
	}
	return s.posts.SoftDelete(ctx, postID)
}

func (s *postService) ListByBoard(ctx context.Context, boardID string, page, pageSize int) ([]*model.Post, error) {
	if _, err := s.boards.Get(ctx, boardID); err != nil {
		return nil, err
	}
	offset, limit := offsetLimit(page, pageSize)
	return s.posts.ListByBoard(ctx, boardID, offset, limit)
}

func (s *postService) ListByAuthor(ctx context.Context, authorID string, page, pageSize int) ([]*model.Post, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.posts.ListByAuthor(ctx, authorID, offset, limit)
}

func (s *postService) ListCollected(ctx context.Context, userID string, page, pageSize int) ([]*model.Post, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.posts.ListCollected(ctx, userID, offset, limit)
}

func (s *postService) ListLikers(ctx context.Context, postID string, page, pageSize int) ([]string, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	offset, limit := offsetLimit(page, pageSize)
	return s.edges.Targets(ctx, repository.EdgePostLike, postID, offset, limit)
}

func (s *postService) Feed(ctx context.Context, userID string) ([]*model.Post, error) {
	return s.posts.Feed(ctx, userID, repository.FeedLimit)
}
