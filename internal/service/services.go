package service

import (
	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/pkg/auth"
)

// Services 路由层依赖的全部服务
type Services struct {
	Users         UserService
	Relationships RelationshipService
	Boards        BoardService
	Posts         PostService
	Comments      CommentService
	Messages      MessageService
	Notifications NotificationService
	Counters      CounterService
}

// New 在同一个 *gorm.DB 上装配仓储和服务；notifier 为 nil 时通知被丢弃
func New(db *gorm.DB, notifier Notifier, tokens *auth.Manager) *Services {
	var (
		users         = repository.NewUserRepository(db)
		edges         = repository.NewEdgeRepository(db)
		follows       = repository.NewFollowRepository(db)
		roles         = repository.NewRoleRepository(db)
		boards        = repository.NewBoardRepository(db)
		posts         = repository.NewPostRepository(db)
		comments      = repository.NewCommentRepository(db)
		sessions      = repository.NewSessionRepository(db)
		notifications = repository.NewNotificationRepository(db)
		counters      = repository.NewCounterRepository(db)
	)
	return &Services{
		Users:         NewUserService(users, tokens),
		Relationships: NewRelationshipService(edges, follows, notifier),
		Boards:        NewBoardService(boards, edges, roles, notifier),
		Posts:         NewPostService(posts, boards, edges, roles, notifier),
		Comments:      NewCommentService(comments, posts, users, edges, roles, notifier),
		Messages:      NewMessageService(sessions, notifications),
		Notifications: NewNotificationService(notifications),
		Counters:      NewCounterService(counters, sessions),
	}
}
