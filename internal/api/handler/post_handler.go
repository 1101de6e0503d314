package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/internal/api/middleware"
	"github.com/d60-Lab/tieba/internal/service"
	"github.com/d60-Lab/tieba/pkg/response"
)

type publishRequest struct {
	BoardID string `json:"board_id" binding:"required"`
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"max=20000"`
	Tags    string `json:"tags" binding:"max=200"`
}

type flagRequest struct {
	On bool `json:"on"`
}

// PublishPost 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body publishRequest true "帖子"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 403 {object} response.Response "私密吧非成员"
// @Failure 404 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) PublishPost(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.postService.Publish(c.Request.Context(), middleware.CurrentUser(c), service.PublishInput{
		BoardID: req.BoardID,
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, p)
}

// GetPost 帖子详情，浏览数 +1
// @Summary 帖子详情
// @Tags 帖子
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.postService.View(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// DeletePost 作者或吧务删帖
// @Summary 删帖
// @Tags 帖子
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{post_id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), c.Param("post_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 点赞帖子
// @Tags 帖子
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "重复点赞"
// @Router /api/v1/posts/{post_id}/like [post]
func (h *Handler) LikePost(c *gin.Context) {
	if err := h.postService.Like(c.Request.Context(), c.Param("post_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 取消点赞
// @Tags 帖子
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/like [delete]
func (h *Handler) UnlikePost(c *gin.Context) {
	if err := h.postService.Unlike(c.Request.Context(), c.Param("post_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 收藏帖子
// @Tags 帖子
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/collect [post]
func (h *Handler) CollectPost(c *gin.Context) {
	if err := h.postService.Collect(c.Request.Context(), c.Param("post_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 取消收藏
// @Tags 帖子
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/collect [delete]
func (h *Handler) UncollectPost(c *gin.Context) {
	if err := h.postService.Uncollect(c.Request.Context(), c.Param("post_id"), middleware.CurrentUser(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 分享帖子
// @Tags 帖子
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/share [post]
func (h *Handler) SharePost(c *gin.Context) {
	if err := h.postService.Share(c.Request.Context(), c.Param("post_id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// PinPost 置顶 / 取消置顶（pin-post）
// @Summary 置顶帖子
// @Tags 帖子
// @Accept json
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Param request body flagRequest true "on=true 置顶"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{post_id}/top [put]
func (h *Handler) PinPost(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.postService.Pin(c.Request.Context(), c.Param("post_id"), middleware.CurrentUser(c), req.On); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// FeaturePost 加精 / 取消加精（feature-post）
// @Summary 加精帖子
// @Tags 帖子
// @Accept json
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Param request body flagRequest true "on=true 加精"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{post_id}/essence [put]
func (h *Handler) FeaturePost(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.postService.Feature(c.Request.Context(), c.Param("post_id"), middleware.CurrentUser(c), req.On); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// @Summary 点赞用户列表
// @Tags 帖子
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts/{post_id}/likers [get]
func (h *Handler) ListLikers(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.postService.ListLikers(c.Request.Context(), c.Param("post_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// ListBoardPosts 吧内帖子：置顶、精华优先，然后按时间倒序
// @Summary 吧内帖子
// @Tags 帖子
// @Param board_id path string true "吧ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/boards/{board_id}/posts [get]
func (h *Handler) ListBoardPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.postService.ListByBoard(c.Request.Context(), c.Param("board_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// @Summary 用户发的帖
// @Tags 帖子
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{user_id}/posts [get]
func (h *Handler) ListUserPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.postService.ListByAuthor(c.Request.Context(), c.Param("user_id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// @Summary 我的收藏
// @Tags 帖子
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/me/collections [get]
func (h *Handler) ListMyCollections(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.postService.ListCollected(c.Request.Context(), middleware.CurrentUser(c), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, pageData(page, pageSize, list))
}

// Feed 关注的吧、加入的吧和关注的人的最新帖子，最多 50 条
// @Summary 首页动态
// @Tags 帖子
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Post}
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	list, err := h.postService.Feed(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}
