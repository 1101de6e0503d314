package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
)

// @用户名：字母数字下划线，3-32 位
var mentionRe = regexp.MustCompile(`@([A-Za-z0-9_]{3,32})`)

// parseMentions 去重后按出现顺序返回
func parseMentions(content string) []string {
	var res []string
	seen := map[string]struct{}{}
	for _, m := range mentionRe.FindAllStringSubmatch(content, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		res = append(res, m[1])
	}
	return res
}

type CreateCommentInput struct {
	PostID    string
	ParentID  string
	ReplyToID string
	Content   string
}

type CommentService interface {
	Create(ctx context.Context, authorID string, in CreateCommentInput) (*model.Comment, error)
	Delete(ctx context.Context, commentID, actorID string) error
	Like(ctx context.Context, commentID, userID string) error
	Unlike(ctx context.Context, commentID, userID string) error
	ListByPost(ctx context.Context, postID string, page, pageSize int) ([]*model.Comment, error)
	ListReplies(ctx context.Context, commentID string, page, pageSize int) ([]*model.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	edges    repository.EdgeRepository
	roles    repository.RoleRepository
	notifier Notifier
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, users repository.UserRepository,
	edges repository.EdgeRepository, roles repository.RoleRepository, notifier Notifier) CommentService {
	return &commentService{comments: comments, posts: posts, users: users, edges: edges, roles: roles, notifier: orNop(notifier)}
}

func (s *commentService) Create(ctx context.Context, authorID string, in CreateCommentInput) (*model.Comment, error) {
	content := sanitizeRich(in.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content required", ErrInvalidArgument)
	}
	c := &model.Comment{PostID: in.PostID, AuthorID: authorID, Content: content}
	if in.ParentID != "" {
		c.ParentID = &in.ParentID
	}
	if in.ReplyToID != "" {
		c.ReplyToID = &in.ReplyToID
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}

	notified := map[string]struct{}{authorID: {}}
	notify := func(uid string, kind model.NotificationType, title string) {
		if _, ok := notified[uid]; ok || uid == "" {
			return
		}
		notified[uid] = struct{}{}
		s.notifier.Notify(uid, kind, Payload{ActorID: authorID, PostID: c.PostID, CommentID: c.ID, Title: title, Content: content})
	}
	if _, postAuthor, err := s.posts.OwnerOf(ctx, c.PostID); err == nil {
		notify(postAuthor, model.NotifyReply, "帖子有新回复")
	}
	notify(in.ReplyToID, model.NotifyReply, "评论有新回复")
	if names := parseMentions(content); len(names) > 0 {
		ids, err := s.users.IDsByUsernames(ctx, names)
		if err == nil {
			for _, name := range names {
				notify(ids[name], model.NotifyMention, "有人@了你")
			}
		}
	}
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, commentID, actorID string) error {
	postID, authorID, err := s.comments.OwnerOf(ctx, commentID)
	if err != nil {
		return err
	}
	if authorID != actorID {
		boardID, _, err := s.posts.OwnerOf(ctx, postID)
		if err != nil {
			return err
		}
		if err := s.roles.Authorize(ctx, boardID, actorID, repository.ActionDeletePost); err != nil {
			return err
		}
	}
	return s.comments.SoftDelete(ctx, commentID)
}

func (s *commentService) Like(ctx context.Context, commentID, userID string) error {
	if _, err := s.edges.AddEdge(ctx, repository.EdgeCommentLike, commentID, userID); err != nil {
		return err
	}
	if postID, authorID, err := s.comments.OwnerOf(ctx, commentID); err == nil {
		s.notifier.Notify(authorID, model.NotifyLike, Payload{ActorID: userID, PostID: postID, CommentID: commentID, Title: "评论被点赞"})
	}
	return nil
}

func (s *commentService) Unlike(ctx context.Context, commentID, userID string) error {
	return s.edges.RemoveEdge(ctx, repository.EdgeCommentLike, commentID, userID)
}

func (s *commentService) ListByPost(ctx context.Context, postID string, page, pageSize int) ([]*model.Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	offset, limit := offsetLimit(page, pageSize)
	return s.comments.ListByPost(ctx, postID, offset, limit)
}

func (s *commentService) ListReplies(ctx context.Context, commentID string, page, pageSize int) ([]*model.Comment, error) {
	offset, limit := offsetLimit(page, pageSize)
	return s.comments.ListReplies(ctx, commentID, offset, limit)
}
