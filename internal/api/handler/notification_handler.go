package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/internal/api/middleware"
	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/pkg/response"
)

type listNotificationsQuery struct {
	Type   string `form:"type" binding:"notiftype"`
	Unread bool   `form:"unread"`
}

type markReadRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100"`
}

type settingsRequest struct {
	NotifyOnReply   bool `json:"notify_on_reply"`
	NotifyOnMention bool `json:"notify_on_mention"`
	NotifyOnLike    bool `json:"notify_on_like"`
	NotifyOnFollow  bool `json:"notify_on_follow"`
	NotifyOnSystem  bool `json:"notify_on_system"`
	NotifyOnBoard   bool `json:"notify_on_board"`
}

// ListNotifications 通知列表
// @Summary 通知列表
// @Tags 通知
// @Security BearerAuth
// @Param type query string false "reply/mention/like/follow/system/board"
// @Param unread query bool false "只看未读"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	var q listNotificationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, pageSize := pageParams(c)
	list, err := h.notificationService.List(c.Request.Context(), middleware.CurrentUser(c),
		repository.NotificationFilter{Type: model.NotificationType(q.Type), Unread: q.Unread}, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// @Summary 未读通知数
// @Tags 通知
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/notifications/unread-count [get]
func (h *Handler) UnreadNotifications(c *gin.Context) {
	n, err := h.notificationService.UnreadCount(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"unread": n})
}

// @Summary 标记已读
// @Tags 通知
// @Accept json
// @Security BearerAuth
// @Param request body markReadRequest true "通知ID"
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/notifications/read [post]
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.notificationService.MarkRead(c.Request.Context(), middleware.CurrentUser(c), req.IDs)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"marked": n})
}

// @Summary 全部已读
// @Tags 通知
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"marked": n})
}

// @Summary 删除通知
// @Tags 通知
// @Security BearerAuth
// @Param notification_id path string true "通知ID"
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/{notification_id} [delete]
func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := h.notificationService.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("notification_id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 通知设置
// @Tags 通知
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.NotificationSettings}
// @Router /api/v1/notifications/settings [get]
func (h *Handler) GetNotificationSettings(c *gin.Context) {
	s, err := h.notificationService.Settings(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, s)
}

// UpdateNotificationSettings 整体覆盖六个开关
// @Summary 修改通知设置
// @Tags 通知
// @Accept json
// @Security BearerAuth
// @Param request body settingsRequest true "开关"
// @Success 200 {object} response.Response{data=model.NotificationSettings}
// @Router /api/v1/notifications/settings [put]
func (h *Handler) UpdateNotificationSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s := &model.NotificationSettings{
		UserID:          middleware.CurrentUser(c),
		NotifyOnReply:   req.NotifyOnReply,
		NotifyOnMention: req.NotifyOnMention,
		NotifyOnLike:    req.NotifyOnLike,
		NotifyOnFollow:  req.NotifyOnFollow,
		NotifyOnSystem:  req.NotifyOnSystem,
		NotifyOnBoard:   req.NotifyOnBoard,
	}
	if err := h.notificationService.UpdateSettings(c.Request.Context(), s); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, s)
}
