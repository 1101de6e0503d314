package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/pkg/response"
)

type recomputeRequest struct {
	Kind      string `json:"kind" binding:"required"`
	OwnerID   string `json:"owner_id"`
	BatchSize int    `json:"batch_size" binding:"omitempty,min=1,max=5000"`
}

// RecomputeCounters 计数对账：带 owner_id 时重算单行，否则扫描整类（kind=all 为全部）
// @Summary 计数重算
// @Tags 运维
// @Accept json
// @Security BearerAuth
// @Param request body recomputeRequest true "kind: user-followers / post-likes / ... / all"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/admin/counters/recompute [post]
func (h *Handler) RecomputeCounters(c *gin.Context) {
	var req recomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.OwnerID != "" {
		v, err := h.counterService.Recompute(c.Request.Context(), req.Kind, req.OwnerID)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, gin.H{"kind": req.Kind, "owner_id": req.OwnerID, "value": v})
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = 500
	}
	results, err := h.counterService.Reconcile(c.Request.Context(), req.Kind, req.BatchSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"results": results})
}

type recomputeUnreadRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// RecomputeUnread 按未读消息重算会话内某一方的未读数
// @Summary 会话未读重算
// @Tags 运维
// @Accept json
// @Security BearerAuth
// @Param session_id path string true "会话 ID"
// @Param request body recomputeUnreadRequest true "会话中的一方"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/sessions/{session_id}/unread/recompute [post]
func (h *Handler) RecomputeUnread(c *gin.Context) {
	var req recomputeUnreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.counterService.RecomputeUnread(c.Request.Context(), c.Param("session_id"), req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"session_id": c.Param("session_id"), "user_id": req.UserID, "unread": n})
}
