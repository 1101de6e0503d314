package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/internal/api/middleware"
	"github.com/d60-Lab/tieba/internal/service"
	"github.com/d60-Lab/tieba/pkg/response"
)

type createCommentRequest struct {
	ParentID  string `json:"parent_id"`
	ReplyToID string `json:"reply_to_id"`
	Content   string `json:"content" binding:"required,max=5000"`
}

// CreateComment 回帖或楼中楼
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Param request body createCommentRequest true "评论"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cm, err := h.commentService.Create(c.Request.Context(), middleware.CurrentUser(c), service.CreateCommentInput{
		PostID:    c.Param("post_id"),
		ParentID:  req.ParentID,
		ReplyToID: req.ReplyToID,
		Content:   req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, cm)
}

// @Summary 评论列表
// @Tags 评论
// @Param post_id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts/{post_id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.commentService.ListByPost(c.Request.Context(), c.Param("post_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// @Summary 楼中楼回复
// @Tags 评论
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/comments/{comment_id}/replies [get]
func (h *Handler) ListReplies(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.commentService.ListReplies(c.Request.Context(), c.Param("comment_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// @Summary 删除评论
// @Tags 评论
// @Security BearerAuth
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/comments/{comment_id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.commentService.Delete(c.Request.Context(), c.Param("comment_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 点赞评论
// @Tags 评论
// @Security BearerAuth
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{comment_id}/like [post]
func (h *Handler) LikeComment(c *gin.Context) {
	if err := h.commentService.Like(c.Request.Context(), c.Param("comment_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 取消点赞评论
// @Tags 评论
// @Security BearerAuth
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{comment_id}/like [delete]
func (h *Handler) UnlikeComment(c *gin.Context) {
	if err := h.commentService.Unlike(c.Request.Context(), c.Param("comment_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
