package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/internal/api/middleware"
	"github.com/d60-Lab/tieba/pkg/response"
)

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Type       string `json:"type" binding:"msgtype"`
	Content    string `json:"content" binding:"required,max=2000"`
}

// SendMessage 发私信，会话不存在时自动创建
// @Summary 发私信
// @Tags 私信
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body sendMessageRequest true "消息"
// @Success 201 {object} response.Response{data=model.Message}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.messageService.Send(c.Request.Context(), middleware.CurrentUser(c), req.ReceiverID, req.Type, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, m)
}

// ListSessions 会话列表，最近更新在前
// @Summary 会话列表
// @Tags 私信
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/messages/sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.messageService.Sessions(c.Request.Context(), middleware.CurrentUser(c), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// @Summary 会话消息
// @Tags 私信
// @Security BearerAuth
// @Param session_id path string true "会话ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response
// @Router /api/v1/messages/sessions/{session_id} [get]
func (h *Handler) ListMessages(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.messageService.Messages(c.Request.Context(), c.Param("session_id"), middleware.CurrentUser(c), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// @Summary 会话标记已读
// @Tags 私信
// @Security BearerAuth
// @Param session_id path string true "会话ID"
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/messages/sessions/{session_id}/read [post]
func (h *Handler) MarkSessionRead(c *gin.Context) {
	n, err := h.messageService.MarkRead(c.Request.Context(), c.Param("session_id"), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"marked": n})
}

// @Summary 删除消息（仅自己不可见）
// @Tags 私信
// @Security BearerAuth
// @Param message_id path string true "消息ID"
// @Success 200 {object} response.Response
// @Router /api/v1/messages/{message_id} [delete]
func (h *Handler) DeleteMessage(c *gin.Context) {
	if err := h.messageService.DeleteMessage(c.Request.Context(), c.Param("message_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 未读统计
// @Tags 私信
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.MessageStats}
// @Router /api/v1/messages/stats [get]
func (h *Handler) MessageStats(c *gin.Context) {
	stats, err := h.messageService.Stats(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, stats)
}
