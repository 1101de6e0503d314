package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/internal/api/middleware"
	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/internal/service"
	"github.com/d60-Lab/tieba/pkg/response"
)

type createBoardRequest struct {
	Name            string `json:"name" binding:"required,max=50"`
	Description     string `json:"description" binding:"max=500"`
	IsPrivate       bool   `json:"is_private"`
	JoinNeedApprove bool   `json:"join_need_approve"`
	PostNeedApprove bool   `json:"post_need_approve"`
}

type updateBoardRequest struct {
	Description     *string `json:"description" binding:"omitempty,max=500"`
	IsPrivate       *bool   `json:"is_private"`
	JoinNeedApprove *bool   `json:"join_need_approve"`
	PostNeedApprove *bool   `json:"post_need_approve"`
}

// CreateBoard 建吧，创建者成为吧主
// @Summary 创建吧
// @Tags 吧
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createBoardRequest true "吧信息"
// @Success 201 {object} response.Response{data=model.Board}
// @Failure 400 {object} response.Response
// @Router /api/v1/boards [post]
func (h *Handler) CreateBoard(c *gin.Context) {
	var req createBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b, err := h.boardService.Create(c.Request.Context(), middleware.CurrentUser(c), service.CreateBoardInput{
		Name:            req.Name,
		Description:     req.Description,
		IsPrivate:       req.IsPrivate,
		JoinNeedApprove: req.JoinNeedApprove,
		PostNeedApprove: req.PostNeedApprove,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, b)
}

// GetBoard 吧详情
// @Summary 吧详情
// @Tags 吧
// @Param board_id path string true "吧ID"
// @Success 200 {object} response.Response{data=model.Board}
// @Failure 404 {object} response.Response
// @Router /api/v1/boards/{board_id} [get]
func (h *Handler) GetBoard(c *gin.Context) {
	b, err := h.boardService.Get(c.Request.Context(), c.Param("board_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, b)
}

// ListPopularBoards 按成员数排序的公开吧
// @Summary 热门吧
// @Tags 吧
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/boards [get]
func (h *Handler) ListPopularBoards(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.boardService.ListPopular(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// ListRecommendedBoards 当前用户尚未加入的公开吧
// @Summary 推荐吧
// @Tags 吧
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/me/boards/recommended [get]
func (h *Handler) ListRecommendedBoards(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.boardService.ListRecommended(c.Request.Context(), middleware.CurrentUser(c), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// UpdateBoard 修改吧设置（manage-board）
// @Summary 修改吧设置
// @Tags 吧
// @Accept json
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Param request body updateBoardRequest true "需要修改的字段"
// @Success 200 {object} response.Response{data=model.Board}
// @Failure 403 {object} response.Response
// @Router /api/v1/boards/{board_id} [patch]
func (h *Handler) UpdateBoard(c *gin.Context) {
	var req updateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b, err := h.boardService.UpdateSettings(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c), repository.BoardSettings{
		Description:     req.Description,
		IsPrivate:       req.IsPrivate,
		JoinNeedApprove: req.JoinNeedApprove,
		PostNeedApprove: req.PostNeedApprove,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, b)
}

// DeleteBoard 吧主删除吧，帖子、评论、点赞、收藏、关注、成员一并删除
// @Summary 删除吧
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/boards/{board_id} [delete]
func (h *Handler) DeleteBoard(c *gin.Context) {
	if err := h.boardService.Delete(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// JoinBoard 加入吧
// @Summary 加入吧
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "已是成员"
// @Failure 403 {object} response.Response "需要审核"
// @Router /api/v1/boards/{board_id}/join [post]
func (h *Handler) JoinBoard(c *gin.Context) {
	if err := h.boardService.Join(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// LeaveBoard 退出吧，吧主不能退出
// @Summary 退出吧
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Success 200 {object} response.Response
// @Router /api/v1/boards/{board_id}/leave [post]
func (h *Handler) LeaveBoard(c *gin.Context) {
	if err := h.boardService.Leave(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 关注吧
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Success 200 {object} response.Response
// @Router /api/v1/boards/{board_id}/follow [post]
func (h *Handler) FollowBoard(c *gin.Context) {
	if err := h.boardService.Follow(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 取消关注吧
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Success 200 {object} response.Response
// @Router /api/v1/boards/{board_id}/follow [delete]
func (h *Handler) UnfollowBoard(c *gin.Context) {
	if err := h.boardService.Unfollow(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ListMembers 成员列表，吧主、吧务在前
// @Summary 成员列表
// @Tags 吧
// @Param board_id path string true "吧ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/boards/{board_id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.boardService.ListMembers(c.Request.Context(), c.Param("board_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// KickMember 移出成员，只能移出角色低于自己的人
// @Summary 移出成员
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Param user_id path string true "成员ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/boards/{board_id}/members/{user_id} [delete]
func (h *Handler) KickMember(c *gin.Context) {
	if err := h.boardService.Kick(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c), c.Param("user_id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// PromoteMember 提升一级，最高到吧务
// @Summary 提升成员
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Param user_id path string true "成员ID"
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /api/v1/boards/{board_id}/members/{user_id}/promote [post]
func (h *Handler) PromoteMember(c *gin.Context) {
	role, err := h.boardService.Promote(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// DemoteMember 降低一级，最低到普通成员
// @Summary 降级成员
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Param user_id path string true "成员ID"
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /api/v1/boards/{board_id}/members/{user_id}/demote [post]
func (h *Handler) DemoteMember(c *gin.Context) {
	role, err := h.boardService.Demote(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// MyRole 当前用户在吧内的角色
// @Summary 我的角色
// @Tags 吧
// @Security BearerAuth
// @Param board_id path string true "吧ID"
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /api/v1/boards/{board_id}/role [get]
func (h *Handler) MyRole(c *gin.Context) {
	role, err := h.boardService.RoleOf(c.Request.Context(), c.Param("board_id"), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// @Summary 用户加入的吧
// @Tags 吧
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{user_id}/boards/joined [get]
func (h *Handler) ListJoinedBoards(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.boardService.ListJoined(c.Request.Context(), c.Param("user_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// @Summary 用户关注的吧
// @Tags 吧
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{user_id}/boards/followed [get]
func (h *Handler) ListFollowedBoards(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.boardService.ListFollowed(c.Request.Context(), c.Param("user_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}
