package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/internal/service"
)

// Handler 所有 HTTP 接口的接收者
type Handler struct {
	userService         service.UserService
	relService          service.RelationshipService
	boardService        service.BoardService
	postService         service.PostService
	commentService      service.CommentService
	messageService      service.MessageService
	notificationService service.NotificationService
	counterService      service.CounterService
}

func New(s *service.Services) *Handler {
	return &Handler{
		userService:         s.Users,
		relService:          s.Relationships,
		boardService:        s.Boards,
		postService:         s.Posts,
		commentService:      s.Comments,
		messageService:      s.Messages,
		notificationService: s.Notifications,
		counterService:      s.Counters,
	}
}

// pageParams 读取 page / page_size，非法值交给 service 兜底
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return page, pageSize
}

func pageData(page, pageSize int, list interface{}) gin.H {
	return gin.H{"page": page, "page_size": pageSize, "list": list}
}
