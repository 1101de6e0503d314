package router

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/tieba/config"
	_ "github.com/d60-Lab/tieba/docs"
	"github.com/d60-Lab/tieba/internal/api/handler"
	"github.com/d60-Lab/tieba/internal/api/middleware"
	"github.com/d60-Lab/tieba/pkg/auth"
	"github.com/d60-Lab/tieba/pkg/logger"
	"github.com/d60-Lab/tieba/pkg/response"
)

// New 组装 gin 引擎和全部路由
func New(cfg *config.Config, h *handler.Handler, tokens *auth.Manager) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(logger.GinLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	v1 := r.Group("/api/v1")

	// 公开接口
	public := v1.Group("")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/users/:user_id", h.GetUser)
		public.GET("/users/:user_id/posts", h.ListUserPosts)
		public.GET("/users/:user_id/boards/joined", h.ListJoinedBoards)
		public.GET("/users/:user_id/boards/followed", h.ListFollowedBoards)

		public.GET("/relations/:user_id/following", h.ListFollowing)
		public.GET("/relations/:user_id/fans", h.ListFans)

		public.GET("/boards", h.ListPopularBoards)
		public.GET("/boards/:board_id", h.GetBoard)
		public.GET("/boards/:board_id/members", h.ListMembers)
		public.GET("/boards/:board_id/posts", h.ListBoardPosts)

		public.GET("/posts/:post_id", h.GetPost)
		public.GET("/posts/:post_id/comments", h.ListComments)
		public.GET("/posts/:post_id/likers", h.ListLikers)
		public.POST("/posts/:post_id/share", h.SharePost)
		public.GET("/comments/:comment_id/replies", h.ListReplies)
	}

	// 登录态接口，按用户限流
	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(tokens), limiter.Middleware())
	{
		authed.POST("/relations/follow", h.Follow)
		authed.POST("/relations/unfollow", h.Unfollow)
		authed.GET("/me/following/:user_id", h.IsFollowing)
		authed.PUT("/me/profile", h.UpdateProfile)
		authed.PUT("/me/password", h.ChangePassword)
		authed.GET("/me/boards/recommended", h.ListRecommendedBoards)

		authed.POST("/boards", h.CreateBoard)
		authed.PATCH("/boards/:board_id", h.UpdateBoard)
		authed.DELETE("/boards/:board_id", h.DeleteBoard)
		authed.POST("/boards/:board_id/join", h.JoinBoard)
		authed.POST("/boards/:board_id/leave", h.LeaveBoard)
		authed.POST("/boards/:board_id/follow", h.FollowBoard)
		authed.DELETE("/boards/:board_id/follow", h.UnfollowBoard)
		authed.GET("/boards/:board_id/role", h.MyRole)
		authed.DELETE("/boards/:board_id/members/:user_id", h.KickMember)
		authed.POST("/boards/:board_id/members/:user_id/promote", h.PromoteMember)
		authed.POST("/boards/:board_id/members/:user_id/demote", h.DemoteMember)

		authed.POST("/posts", h.PublishPost)
		authed.DELETE("/posts/:post_id", h.DeletePost)
		authed.POST("/posts/:post_id/like", h.LikePost)
		authed.DELETE("/posts/:post_id/like", h.UnlikePost)
		authed.POST("/posts/:post_id/collect", h.CollectPost)
		authed.DELETE("/posts/:post_id/collect", h.UncollectPost)
		authed.PUT("/posts/:post_id/top", h.PinPost)
		authed.PUT("/posts/:post_id/essence", h.FeaturePost)
		authed.POST("/posts/:post_id/comments", h.CreateComment)
		authed.GET("/feed", h.Feed)
		authed.GET("/me/collections", h.ListMyCollections)

		authed.DELETE("/comments/:comment_id", h.DeleteComment)
		authed.POST("/comments/:comment_id/like", h.LikeComment)
		authed.DELETE("/comments/:comment_id/like", h.UnlikeComment)

		authed.POST("/messages", h.SendMessage)
		authed.GET("/messages/stats", h.MessageStats)
		authed.GET("/messages/sessions", h.ListSessions)
		authed.GET("/messages/sessions/:session_id", h.ListMessages)
		authed.POST("/messages/sessions/:session_id/read", h.MarkSessionRead)
		authed.DELETE("/messages/:message_id", h.DeleteMessage)

		authed.GET("/notifications", h.ListNotifications)
		authed.GET("/notifications/unread-count", h.UnreadNotifications)
		authed.POST("/notifications/read", h.MarkNotificationsRead)
		authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		authed.GET("/notifications/settings", h.GetNotificationSettings)
		authed.PUT("/notifications/settings", h.UpdateNotificationSettings)
		authed.DELETE("/notifications/:notification_id", h.DeleteNotification)
	}

	// 运维接口，仅白名单用户
	admin := v1.Group("/admin")
	admin.Use(middleware.JWTAuth(tokens), middleware.AdminOnly(cfg.Admin.UserIDs))
	{
		admin.POST("/counters/recompute", h.RecomputeCounters)
		admin.POST("/sessions/:session_id/unread/recompute", h.RecomputeUnread)
	}
	return r, nil
}
