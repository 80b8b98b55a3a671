package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/crew_server/internal/api/middleware"
	"github.com/qs3c/crew_server/internal/model/dto"
	"github.com/qs3c/crew_server/internal/pkg/response"
	"github.com/qs3c/crew_server/internal/service"
)

type InteractionHandler struct {
	likes     *service.InteractionService
	bookmarks *service.InteractionService
}

func NewInteractionHandler(likes, bookmarks *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		likes:     likes,
		bookmarks: bookmarks,
	}
}

// ToggleLike 点赞或取消点赞
// POST /api/v1/likes
func (h *InteractionHandler) ToggleLike(c *gin.Context) {
	var req dto.LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	h.toggle(c, h.likes, dto.ToggleRequest{
		Category:  req.Category,
		ContentID: req.ContentID,
		DesiredOn: *req.LikeStatus,
	})
}

// ToggleBookmark 收藏或取消收藏
// POST /api/v1/bookmarks
func (h *InteractionHandler) ToggleBookmark(c *gin.Context) {
	var req dto.BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	h.toggle(c, h.bookmarks, dto.ToggleRequest{
		Category:  req.Category,
		ContentID: req.ContentID,
		DesiredOn: *req.BookmarkStatus,
	})
}

func (h *InteractionHandler) toggle(c *gin.Context, svc *service.InteractionService, req dto.ToggleRequest) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := svc.Toggle(c.Request.Context(), userID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, resp)
}

// ListLikes 我的点赞
// GET /api/v1/likes?category=&offset=&limit=
func (h *InteractionHandler) ListLikes(c *gin.Context) {
	h.list(c, h.likes)
}

// ListBookmarks 我的收藏
// GET /api/v1/bookmarks?category=&offset=&limit=
func (h *InteractionHandler) ListBookmarks(c *gin.Context) {
	h.list(c, h.bookmarks)
}

func (h *InteractionHandler) list(c *gin.Context, svc *service.InteractionService) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ListInteractionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, err := svc.List(c.Request.Context(), userID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"offset": req.Offset,
		"limit":  req.Limit,
		"items":  items,
	})
}

// State 当前用户对某个内容的点赞/收藏状态
// GET /api/v1/interactions/state?category=&content_id=
func (h *InteractionHandler) State(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.InteractionStateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	liked, err := h.likes.IsActive(ctx, userID, req.ContentID, req.Category)
	if err != nil {
		renderError(c, err)
		return
	}
	bookmarked, err := h.bookmarks.IsActive(ctx, userID, req.ContentID, req.Category)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, dto.InteractionState{
		ContentID:  req.ContentID,
		Category:   req.Category,
		Liked:      liked,
		Bookmarked: bookmarked,
	})
}
